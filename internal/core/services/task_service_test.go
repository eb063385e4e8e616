package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
)

// memTaskRepo is an in-memory TaskRepository safe for concurrent use by the
// background worker and the test goroutine.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]*domain.Task{}}
}

func (r *memTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *task
	return &cp, nil
}

func (r *memTaskRepo) GetAll(ctx context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, *task)
	}
	return out, nil
}

func (r *memTaskRepo) AppendLog(ctx context.Context, id string, log domain.TaskLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return errors.New("record not found")
	}
	task.Logs = append(task.Logs, log)
	return nil
}

func (r *memTaskRepo) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return errors.New("record not found")
	}
	task.Status = status
	return nil
}

func (r *memTaskRepo) UpdateProgress(ctx context.Context, id string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return errors.New("record not found")
	}
	task.Progress = progress
	return nil
}

func (r *memTaskRepo) SetRunResult(ctx context.Context, id string, sandboxURL, branchName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return errors.New("record not found")
	}
	task.SandboxURL = sandboxURL
	task.BranchName = branchName
	return nil
}

func (r *memTaskRepo) DeleteByStatus(ctx context.Context, statuses []domain.TaskStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, task := range r.tasks {
		for _, status := range statuses {
			if task.Status == status {
				delete(r.tasks, id)
				count++
				break
			}
		}
	}
	return count, nil
}

// stubRunner runs the given function as the task body.
type stubRunner struct {
	fn func(ctx context.Context, task *domain.Task, tl ports.TaskLogger) error
}

func (r *stubRunner) Run(ctx context.Context, task *domain.Task, tl ports.TaskLogger) error {
	if r.fn == nil {
		return nil
	}
	return r.fn(ctx, task, tl)
}

func newTestTaskService(repo ports.TaskRepository, runner ports.TaskRunner, warnAfter, timeout time.Duration) ports.TaskService {
	return NewTaskService(TaskServiceConfig{
		Repo:      repo,
		Runner:    runner,
		Logger:    logger.NewNop(),
		WarnAfter: warnAfter,
		Timeout:   timeout,
	})
}

func waitForTerminal(t *testing.T, repo *memTaskRepo, id string) *domain.Task {
	t.Helper()
	var task *domain.Task
	require.Eventually(t, func() bool {
		got, err := repo.GetByID(context.Background(), id)
		if err != nil {
			return false
		}
		task = got
		return got.Status.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond, "task never reached a terminal status")
	return task
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTestTaskService(newMemTaskRepo(), &stubRunner{}, time.Minute, 2*time.Minute)

	tests := map[string]struct {
		prompt string
	}{
		"Empty prompt":      {prompt: ""},
		"Whitespace prompt": {prompt: "   \t\n"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Prompt: test.prompt})
			assert.ErrorIs(t, err, ErrTaskInvalidInput)
		})
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	repo := newMemTaskRepo()
	svc := newTestTaskService(repo, &stubRunner{}, time.Minute, 2*time.Minute)

	task, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Prompt: "build me a thing"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "claude", task.SelectedAgent)
	require.NotEmpty(t, task.Logs)
	assert.Equal(t, domain.TaskLogInfo, task.Logs[0].Type)
	assert.Equal(t, "Task created, preparing to start...", task.Logs[0].Message)
}

func TestProcessTaskCompletes(t *testing.T) {
	repo := newMemTaskRepo()
	svc := newTestTaskService(repo, &stubRunner{}, time.Minute, 2*time.Minute)

	created, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Prompt: "say hello"})
	require.NoError(t, err)

	task := waitForTerminal(t, repo, created.ID)
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)

	last := task.Logs[len(task.Logs)-1]
	assert.Equal(t, domain.TaskLogSuccess, last.Type)
	assert.Equal(t, "Task completed: say hello", last.Message)
}

func TestProcessTaskRunnerFailure(t *testing.T) {
	repo := newMemTaskRepo()
	runner := &stubRunner{fn: func(ctx context.Context, task *domain.Task, tl ports.TaskLogger) error {
		return errors.New("runner exploded")
	}}
	svc := newTestTaskService(repo, runner, time.Minute, 2*time.Minute)

	created, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Prompt: "doomed"})
	require.NoError(t, err)

	task := waitForTerminal(t, repo, created.ID)
	assert.Equal(t, domain.TaskStatusError, task.Status)

	var sawError bool
	for _, log := range task.Logs {
		if log.Type == domain.TaskLogError && log.Message == "Error: runner exploded" {
			sawError = true
		}
	}
	assert.True(t, sawError, "expected the runner error in the task log")
}

func TestProcessTaskRunnerPanic(t *testing.T) {
	repo := newMemTaskRepo()
	runner := &stubRunner{fn: func(ctx context.Context, task *domain.Task, tl ports.TaskLogger) error {
		panic("kaboom")
	}}
	svc := newTestTaskService(repo, runner, time.Minute, 2*time.Minute)

	created, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Prompt: "panicky"})
	require.NoError(t, err)

	task := waitForTerminal(t, repo, created.ID)
	assert.Equal(t, domain.TaskStatusError, task.Status)

	var sawPanic bool
	for _, log := range task.Logs {
		if log.Type == domain.TaskLogError && log.Message == "Unexpected error occurred: kaboom" {
			sawPanic = true
		}
	}
	assert.True(t, sawPanic, "expected the panic message in the task log")
}

func TestProcessTaskTimeout(t *testing.T) {
	repo := newMemTaskRepo()
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	runner := &stubRunner{fn: func(ctx context.Context, task *domain.Task, tl ports.TaskLogger) error {
		<-release
		return nil
	}}
	svc := newTestTaskService(repo, runner, 20*time.Millisecond, 50*time.Millisecond)

	created, err := svc.CreateTask(context.Background(), ports.CreateTaskInput{Prompt: "slow"})
	require.NoError(t, err)

	task := waitForTerminal(t, repo, created.ID)
	assert.Equal(t, domain.TaskStatusError, task.Status)

	var sawWarn, sawTimeout bool
	for _, log := range task.Logs {
		switch log.Type {
		case domain.TaskLogInfo:
			if strings.HasPrefix(log.Message, "Task is taking longer than expected") {
				sawWarn = true
			}
		case domain.TaskLogError:
			if strings.HasPrefix(log.Message, "Task execution timed out") {
				sawTimeout = true
			}
		}
	}
	assert.True(t, sawWarn, "expected the slow-task warning in the task log")
	assert.True(t, sawTimeout, "expected the timeout message in the task log")
}

func TestGetTaskByIDNotFound(t *testing.T) {
	svc := newTestTaskService(newMemTaskRepo(), &stubRunner{}, time.Minute, 2*time.Minute)

	_, err := svc.GetTaskByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTasksByStatus(t *testing.T) {
	tests := map[string]struct {
		statuses []domain.TaskStatus
		expErr   error
	}{
		"No statuses": {
			statuses: nil,
			expErr:   ErrTaskStatusNotDeletable,
		},
		"Pending is not deletable": {
			statuses: []domain.TaskStatus{domain.TaskStatusPending},
			expErr:   ErrTaskStatusNotDeletable,
		},
		"Processing is not deletable": {
			statuses: []domain.TaskStatus{domain.TaskStatusCompleted, domain.TaskStatusProcessing},
			expErr:   ErrTaskStatusNotDeletable,
		},
		"Completed and error are deletable": {
			statuses: []domain.TaskStatus{domain.TaskStatusCompleted, domain.TaskStatusError},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newMemTaskRepo()
			repo.tasks["a"] = &domain.Task{ID: "a", Status: domain.TaskStatusCompleted}
			repo.tasks["b"] = &domain.Task{ID: "b", Status: domain.TaskStatusError}
			repo.tasks["c"] = &domain.Task{ID: "c", Status: domain.TaskStatusProcessing}

			svc := newTestTaskService(repo, &stubRunner{}, time.Minute, 2*time.Minute)
			count, err := svc.DeleteTasksByStatus(context.Background(), test.statuses)

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			_, err = repo.GetByID(context.Background(), "c")
			assert.NoError(t, err, "processing task must survive the bulk delete")
		})
	}
}
