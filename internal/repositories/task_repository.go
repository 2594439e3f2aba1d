package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

type TaskRepository struct {
	db *gorm.DB
}

// TaskFilter narrows List. Zero fields are ignored.
type TaskFilter struct {
	CreatedByID      uint
	AssignedLeaderID uint
	Statuses         []constants.TaskStatus
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create stores a new task together with the ledger entries it was built
// with, in one transaction.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	task.Version = 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		return insertHistories(tx, task)
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := withAssociations(r.db.WithContext(ctx)).First(&task, "tasks.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query := withAssociations(r.db.WithContext(ctx))

	if filter.CreatedByID != 0 {
		query = query.Where("created_by_id = ?", filter.CreatedByID)
	}
	if filter.AssignedLeaderID != 0 {
		query = query.Where("assigned_leader_id = ?", filter.AssignedLeaderID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var tasks []model.Task
	err := query.Order("deadline asc").Order("id asc").Find(&tasks).Error
	return tasks, err
}

// Save writes next over the stored row if nobody else changed it since it
// was read, and appends the ledger entries that are not stored yet. The
// update and the appends commit together or not at all.
func (r *TaskRepository) Save(ctx context.Context, next *model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).
			Where("id = ? AND version = ?", next.ID, next.Version).
			Updates(map[string]interface{}{
				"title":              next.Title,
				"description":        next.Description,
				"status":             next.Status,
				"progress":           next.Progress,
				"deadline":           next.Deadline,
				"assigned_leader_id": next.AssignedLeaderID,
				"progress_by_id":     next.ProgressByID,
				"updated_at":         time.Now().UTC(),
				"version":            gorm.Expr("version + 1"),
			})

		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrOptimisticLock
		}

		return insertHistories(tx, next)
	})
	if err != nil {
		return err
	}

	next.Version++
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.HistoryEntry{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND version = ?", task.ID, task.Version).Delete(&model.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrOptimisticLock
		}
		return nil
	})
}

func insertHistories(tx *gorm.DB, task *model.Task) error {
	for i := range task.Histories {
		h := &task.Histories[i]
		if h.ID != 0 {
			continue
		}
		h.TaskID = task.ID
		if err := tx.Omit(clause.Associations).Create(h).Error; err != nil {
			return err
		}
	}
	return nil
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("CreatedBy").
		Preload("AssignedLeader").
		Preload("ProgressBy").
		Preload("Histories", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_histories.id asc")
		}).
		Preload("Histories.ActionBy")
}
