package services

import (
	"context"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
)

// taskLogger is the log sink bound to one task. Every append goes through the
// repository's atomic select-append-write, so entries keep insertion order.
type taskLogger struct {
	repo   ports.TaskRepository
	taskID string
	log    *logger.Logger
}

func NewTaskLogger(repo ports.TaskRepository, taskID string, log *logger.Logger) ports.TaskLogger {
	return &taskLogger{repo: repo, taskID: taskID, log: log}
}

func (l *taskLogger) append(ctx context.Context, entry domain.TaskLog) error {
	if err := l.repo.AppendLog(ctx, l.taskID, entry); err != nil {
		l.log.Errorw("task_log_append_failed", "task_id", l.taskID, "type", entry.Type, "error", err)
		return err
	}
	return nil
}

func (l *taskLogger) Info(ctx context.Context, message string) error {
	return l.append(ctx, domain.NewInfoLog(message))
}

func (l *taskLogger) Error(ctx context.Context, message string) error {
	return l.append(ctx, domain.NewErrorLog(message))
}

func (l *taskLogger) Success(ctx context.Context, message string) error {
	return l.append(ctx, domain.NewSuccessLog(message))
}

func (l *taskLogger) Command(ctx context.Context, message string) error {
	return l.append(ctx, domain.NewCommandLog(message))
}

func (l *taskLogger) UpdateStatus(ctx context.Context, status domain.TaskStatus, errorMessage string) error {
	if status == domain.TaskStatusError && errorMessage != "" {
		_ = l.append(ctx, domain.NewErrorLog(errorMessage))
	}
	if err := l.repo.UpdateStatus(ctx, l.taskID, status); err != nil {
		l.log.Errorw("task_status_update_failed", "task_id", l.taskID, "status", status, "error", err)
		return err
	}
	return nil
}

func (l *taskLogger) UpdateProgress(ctx context.Context, progress int, message string) error {
	if message != "" {
		_ = l.append(ctx, domain.NewInfoLog(message))
	}
	if err := l.repo.UpdateProgress(ctx, l.taskID, progress); err != nil {
		l.log.Errorw("task_progress_update_failed", "task_id", l.taskID, "progress", progress, "error", err)
		return err
	}
	return nil
}
