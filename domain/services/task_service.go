package services

import (
	"context"

	"taskboard/domain/dto"
	"taskboard/domain/models"

	"github.com/google/uuid"
)

type TaskService interface {
	CreateTask(ctx context.Context, actor *models.Principal, req *dto.CreateTaskRequest) (*models.Task, error)
	GetTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]dto.TaskResponse, error)
	UpdateTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error)
	TransitionStatus(ctx context.Context, actor *models.Principal, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error)
	ArchiveTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID) (*models.Task, error)
	UnarchiveTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID) (*models.Task, error)
	AssignTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID, req *dto.AssignRequest) (*models.Task, error)
	SplitTask(ctx context.Context, actor *models.Principal, parentID uuid.UUID, specs []dto.SubtaskSpec) ([]uuid.UUID, error)
	ListSplitRecords(ctx context.Context, parentID uuid.UUID) ([]*models.SplitRecord, error)
	DeleteTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID) error
	AddComment(ctx context.Context, actor *models.Principal, taskID uuid.UUID, body string) (*models.Comment, error)
}
