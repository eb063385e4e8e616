package ports

import (
	"context"

	"github.com/fragbox/backend/internal/domain"
)

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	GetAll(ctx context.Context) ([]domain.Task, error)
	// AppendLog appends atomically: current logs are read, extended and
	// written back inside one transaction.
	AppendLog(ctx context.Context, id string, log domain.TaskLog) error
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	SetRunResult(ctx context.Context, id string, sandboxURL, branchName string) error
	// DeleteByStatus removes tasks in the given statuses and returns the
	// number removed. Only terminal statuses are eligible.
	DeleteByStatus(ctx context.Context, statuses []domain.TaskStatus) (int64, error)
}

type WorkspaceFileRepository interface {
	Create(ctx context.Context, file *domain.WorkspaceFile) error
	GetAll(ctx context.Context) ([]domain.WorkspaceFile, error)
	GetByPath(ctx context.Context, path string) (*domain.WorkspaceFile, error)
	Delete(ctx context.Context, path string) error
}

type SystemSettingRepository interface {
	Get(ctx context.Context, key string) (*domain.SystemSetting, error)
	Set(ctx context.Context, setting *domain.SystemSetting) error
	Delete(ctx context.Context, key string) error
}
