package db

import (
	"context"
	"time"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: db, log: log}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Errorw("task_repo_create_failed", "id", task.ID, "error", err)
		return err
	}
	r.log.Infow("task_repo_create_ok", "id", task.ID)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		r.log.Errorw("task_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error; err != nil {
		r.log.Errorw("task_repo_list_failed", "error", err)
		return nil, err
	}
	return tasks, nil
}

// AppendLog reads the current log sequence, extends it and writes it back in
// one transaction. The store has no native array append, so the
// select-append-write must be atomic to keep entries ordered and lossless.
func (r *taskRepository) AppendLog(ctx context.Context, id string, entry domain.TaskLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task domain.Task
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			return err
		}

		task.Logs = append(task.Logs, entry)
		return tx.Model(&domain.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
			"logs":       task.Logs,
			"updated_at": time.Now().UTC(),
		}).Error
	})
	if err != nil {
		r.log.Errorw("task_repo_append_log_failed", "id", id, "error", err)
		return err
	}
	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	err := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}).Error
	if err != nil {
		r.log.Errorw("task_repo_update_status_failed", "id", id, "status", status, "error", err)
		return err
	}
	r.log.Infow("task_repo_update_status_ok", "id", id, "status", status)
	return nil
}

func (r *taskRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	err := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
		"progress":   progress,
		"updated_at": time.Now().UTC(),
	}).Error
	if err != nil {
		r.log.Errorw("task_repo_update_progress_failed", "id", id, "progress", progress, "error", err)
		return err
	}
	return nil
}

func (r *taskRepository) SetRunResult(ctx context.Context, id string, sandboxURL, branchName string) error {
	err := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sandbox_url": sandboxURL,
		"branch_name": branchName,
		"updated_at":  time.Now().UTC(),
	}).Error
	if err != nil {
		r.log.Errorw("task_repo_set_run_result_failed", "id", id, "error", err)
		return err
	}
	return nil
}

// DeleteByStatus removes tasks in the given statuses. Non-terminal statuses
// are filtered out here as well: a running task must never be deleted no
// matter what the caller asks for.
func (r *taskRepository) DeleteByStatus(ctx context.Context, statuses []domain.TaskStatus) (int64, error) {
	deletable := make([]domain.TaskStatus, 0, len(statuses))
	for _, status := range statuses {
		if status.IsTerminal() {
			deletable = append(deletable, status)
		}
	}
	if len(deletable) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Where("status IN ?", deletable).Delete(&domain.Task{})
	if result.Error != nil {
		r.log.Errorw("task_repo_delete_by_status_failed", "statuses", deletable, "error", result.Error)
		return 0, result.Error
	}
	r.log.Infow("task_repo_delete_by_status_ok", "statuses", deletable, "count", result.RowsAffected)
	return result.RowsAffected, nil
}
