package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/domain/models"
	"taskboard/domain/repositories"
	"taskboard/pkg/apperror"
)

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) repositories.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func preloadAssignees(db *gorm.DB) *gorm.DB {
	return db.Preload("Assignees", func(db *gorm.DB) *gorm.DB {
		return db.Order("user_id")
	})
}

// loadTask อ่าน task พร้อม assignees; lock=true จะ lock row ไว้จนจบ transaction
func loadTask(tx *gorm.DB, id uuid.UUID, lock bool) (*models.Task, error) {
	q := preloadAssignees(tx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var task models.Task
	if err := q.Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("task %s not found", id)
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return loadTask(r.db.WithContext(ctx), id, false)
}

func (r *TaskRepositoryImpl) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Task, error) {
	var tasks []*models.Task
	if len(ids) == 0 {
		return tasks, nil
	}
	err := preloadAssignees(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	q := preloadAssignees(r.db.WithContext(ctx))
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	} else if !filter.IncludeArchived {
		q = q.Where("status <> ?", models.StatusArchived)
	}

	var tasks []*models.Task
	err := q.Order("created_at ASC").Order("id ASC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, id uuid.UUID, mutate repositories.TaskMutation) (*models.Task, *models.Task, error) {
	var before, after *models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadTask(tx, id, true)
		if err != nil {
			return err
		}
		snapshot := *current
		before = &snapshot

		fields, err := mutate(current)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			after = current
			return nil
		}
		if roles, ok := fields["role_assignments"].(map[string]interface{}); ok {
			fields["role_assignments"] = datatypes.JSONMap(roles)
		}
		fields["updated_at"] = time.Now()

		if err := tx.Model(&models.Task{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}

		after, err = loadTask(tx, id, false)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (r *TaskRepositoryImpl) ReplaceAssignees(ctx context.Context, id uuid.UUID, check repositories.TaskCheck, userIDs []uuid.UUID, roleAssignments map[string]interface{}) (*models.Task, *models.Task, error) {
	var before, after *models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadTask(tx, id, true)
		if err != nil {
			return err
		}
		snapshot := *current
		before = &snapshot

		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignee{}).Error; err != nil {
			return err
		}

		if len(userIDs) > 0 {
			now := time.Now()
			rows := make([]models.TaskAssignee, 0, len(userIDs))
			for _, uid := range userIDs {
				rows = append(rows, models.TaskAssignee{TaskID: id, UserID: uid, CreatedAt: now})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		var roles datatypes.JSONMap
		if roleAssignments != nil {
			roles = datatypes.JSONMap(roleAssignments)
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
			"role_assignments": roles,
			"updated_at":       time.Now(),
		}).Error; err != nil {
			return err
		}

		after, err = loadTask(tx, id, false)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (r *TaskRepositoryImpl) Split(ctx context.Context, parentID, actorID uuid.UUID, check repositories.TaskCheck, children []*models.Task) (*models.Task, []*models.Task, error) {
	if len(children) == 0 {
		return nil, nil, apperror.InvalidArgument("at least one subtask is required")
	}
	for i, child := range children {
		if child.Title == "" {
			return nil, nil, apperror.InvalidArgument("subtask %d: title is required", i)
		}
		if child.Deadline.IsZero() {
			return nil, nil, apperror.InvalidArgument("subtask %d: deadline is required", i)
		}
	}

	var parent *models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadTask(tx, parentID, true)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}

		for i, child := range children {
			child.ID = uuid.Nil
			child.IsSubtask = true
			child.ParentTaskID = &parentID
			child.Status = models.StatusUnassigned
			child.CreatorID = actorID
			child.Assignees = nil

			if err := tx.Create(child).Error; err != nil {
				return fmt.Errorf("create subtask %d: %w", i, err)
			}

			record := &models.SplitRecord{
				ParentTaskID: parentID,
				ChildTaskID:  child.ID,
				ActorID:      actorID,
				Position:     i,
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("create split record %d: %w", i, err)
			}
		}

		if err := tx.Model(&models.Task{}).Where("id = ?", parentID).Updates(map[string]interface{}{
			"status":     models.StatusInProgress,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("update parent status: %w", err)
		}

		parent, err = loadTask(tx, parentID, false)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return parent, children, nil
}

func (r *TaskRepositoryImpl) ListSplitRecords(ctx context.Context, parentID uuid.UUID) ([]*models.SplitRecord, error) {
	var records []*models.SplitRecord
	err := r.db.WithContext(ctx).
		Where("parent_task_id = ?", parentID).
		Order("position ASC").
		Find(&records).Error
	return records, err
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID, check repositories.TaskCheck) (*models.Task, []*models.Task, error) {
	var deleted *models.Task
	var detached []*models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadTask(tx, id, true)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}
		deleted = current

		// dependent rows cascade with the task
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.EffortLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_task_id = ? OR child_task_id = ?", id, id).Delete(&models.SplitRecord{}).Error; err != nil {
			return err
		}

		// children are detached, not deleted
		var childIDs []uuid.UUID
		if err := tx.Model(&models.Task{}).Where("parent_task_id = ?", id).Pluck("id", &childIDs).Error; err != nil {
			return err
		}
		if len(childIDs) > 0 {
			if err := tx.Model(&models.Task{}).Where("id IN ?", childIDs).Updates(map[string]interface{}{
				"parent_task_id": nil,
				"is_subtask":     false,
				"updated_at":     time.Now(),
			}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if len(childIDs) > 0 {
			if err := preloadAssignees(tx).Where("id IN ?", childIDs).Order("created_at ASC").Find(&detached).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return deleted, detached, nil
}

func (r *TaskRepositoryImpl) AddComment(ctx context.Context, comment *models.Comment) (*models.Task, error) {
	var task *models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = loadTask(tx, comment.TaskID, false)
		if err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
