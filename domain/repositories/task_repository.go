package repositories

import (
	"context"

	"taskboard/domain/models"

	"github.com/google/uuid"
)

// TaskMutation inspects the locked row and returns the columns to write.
// Returning an error aborts the transaction; an empty map writes nothing.
type TaskMutation func(current *models.Task) (map[string]interface{}, error)

// TaskCheck inspects the locked row before a structural change
type TaskCheck func(current *models.Task) error

// TaskRepository serializes writes per task row through the database
// transaction (row lock on the target task). Every mutation returns the
// snapshot read inside the same transaction.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)

	Update(ctx context.Context, id uuid.UUID, mutate TaskMutation) (before, after *models.Task, err error)

	// ReplaceAssignees swaps the assignee rows and the role map wholesale
	ReplaceAssignees(ctx context.Context, id uuid.UUID, check TaskCheck, userIDs []uuid.UUID, roleAssignments map[string]interface{}) (before, after *models.Task, err error)

	// Split inserts children + split records and forces the parent to
	// in_progress in one transaction. Children come back in input order.
	Split(ctx context.Context, parentID, actorID uuid.UUID, check TaskCheck, children []*models.Task) (parent *models.Task, created []*models.Task, err error)
	ListSplitRecords(ctx context.Context, parentID uuid.UUID) ([]*models.SplitRecord, error)

	// Delete cascades dependent rows and detaches child tasks
	Delete(ctx context.Context, id uuid.UUID, check TaskCheck) (deleted *models.Task, detached []*models.Task, err error)

	AddComment(ctx context.Context, comment *models.Comment) (*models.Task, error)
}
