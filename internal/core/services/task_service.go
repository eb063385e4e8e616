package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
)

const defaultSelectedAgent = "claude"

type TaskService struct {
	repo       ports.TaskRepository
	runner     ports.TaskRunner
	logger     *logger.Logger
	supervisor *Supervisor
}

type TaskServiceConfig struct {
	Repo   ports.TaskRepository
	Runner ports.TaskRunner
	Logger *logger.Logger
	// WarnAfter and Timeout bound the background worker; zero values fall
	// back to the 4/5 minute defaults.
	WarnAfter time.Duration
	Timeout   time.Duration
}

func NewTaskService(cfg TaskServiceConfig) ports.TaskService {
	return &TaskService{
		repo:       cfg.Repo,
		runner:     cfg.Runner,
		logger:     cfg.Logger,
		supervisor: NewSupervisor(cfg.WarnAfter, cfg.Timeout),
	}
}

// CreateTask validates and persists a new pending task, then dispatches
// exactly one background worker for it. The call never waits on execution.
func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, ErrTaskInvalidInput
	}

	agent := input.SelectedAgent
	if agent == "" {
		agent = defaultSelectedAgent
	}

	task := &domain.Task{
		ID:            uuid.New().String(),
		Status:        domain.TaskStatusPending,
		Progress:      0,
		Prompt:        input.Prompt,
		RepoURL:       input.RepoURL,
		SelectedAgent: agent,
		SelectedModel: input.SelectedModel,
		Logs:          domain.TaskLogs{domain.NewInfoLog("Task created, preparing to start...")},
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Errorw("task_create_failed", "error", err)
		return nil, err
	}

	s.logger.Infow("task_created", "task_id", task.ID, "agent", agent)

	// Fire-and-forget: the worker owns this task id from here on and is the
	// only writer for it. The context is detached on purpose, the request
	// ending must not tear the worker down.
	go s.processTask(task)

	return task, nil
}

func (s *TaskService) GetTasks(ctx context.Context) ([]domain.Task, error) {
	return s.repo.GetAll(ctx)
}

func (s *TaskService) GetTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) DeleteTasksByStatus(ctx context.Context, statuses []domain.TaskStatus) (int64, error) {
	if len(statuses) == 0 {
		return 0, ErrTaskStatusNotDeletable
	}
	for _, status := range statuses {
		if !status.IsTerminal() {
			return 0, ErrTaskStatusNotDeletable
		}
	}

	count, err := s.repo.DeleteByStatus(ctx, statuses)
	if err != nil {
		s.logger.Errorw("task_bulk_delete_failed", "statuses", statuses, "error", err)
		return 0, err
	}
	s.logger.Infow("task_bulk_delete_ok", "statuses", statuses, "count", count)
	return count, nil
}

// processTask is the background worker entry point. Every exit path, panics
// and timeouts included, persists a terminal status; a task left in
// processing is a defect.
func (s *TaskService) processTask(task *domain.Task) {
	ctx := context.Background()
	tl := NewTaskLogger(s.repo, task.ID, s.logger)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("task_worker_panic", "task_id", task.ID, "panic", r)
			_ = tl.UpdateStatus(ctx, domain.TaskStatusError, fmt.Sprintf("Unexpected error occurred: %v", r))
		}
	}()

	onWarn := func() {
		_ = tl.Info(ctx, fmt.Sprintf(
			"Task is taking longer than expected (%s+). Will timeout in %s.",
			formatDuration(s.supervisor.WarnAfter), formatDuration(s.supervisor.Timeout-s.supervisor.WarnAfter)))
	}

	err := s.supervisor.Run(ctx, func(ctx context.Context) error {
		return s.runTask(ctx, task, tl)
	}, onWarn)

	switch {
	case err == nil:
		s.logger.Infow("task_completed", "task_id", task.ID)
	case err == ErrTaskTimeout:
		s.logger.Errorw("task_timed_out", "task_id", task.ID, "timeout", s.supervisor.Timeout)
		_ = tl.Error(ctx, fmt.Sprintf("Task execution timed out after %s", formatDuration(s.supervisor.Timeout)))
		_ = tl.UpdateStatus(ctx, domain.TaskStatusError, fmt.Sprintf(
			"Task execution timed out after %s. The operation took too long to complete.",
			formatDuration(s.supervisor.Timeout)))
	default:
		s.logger.Errorw("task_failed", "task_id", task.ID, "error", err)
		_ = tl.Error(ctx, fmt.Sprintf("Error: %v", err))
		_ = tl.UpdateStatus(ctx, domain.TaskStatusError, err.Error())
	}
}

func (s *TaskService) runTask(ctx context.Context, task *domain.Task, tl ports.TaskLogger) error {
	if err := tl.UpdateStatus(ctx, domain.TaskStatusProcessing, ""); err != nil {
		return err
	}
	_ = tl.UpdateProgress(ctx, 10, "Initializing task execution...")

	if s.runner != nil {
		if err := s.runner.Run(ctx, task, tl); err != nil {
			return err
		}
	}

	_ = tl.UpdateProgress(ctx, 100, "Task completed successfully")
	if err := tl.UpdateStatus(ctx, domain.TaskStatusCompleted, ""); err != nil {
		return err
	}
	return tl.Success(ctx, "Task completed: "+task.Prompt)
}

func formatDuration(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
