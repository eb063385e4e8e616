package ports

import (
	"context"

	"github.com/fragbox/backend/internal/domain"
)

type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	GetTasks(ctx context.Context) ([]domain.Task, error)
	GetTaskByID(ctx context.Context, id string) (*domain.Task, error)
	DeleteTasksByStatus(ctx context.Context, statuses []domain.TaskStatus) (int64, error)
}

type CreateTaskInput struct {
	Prompt        string
	RepoURL       string
	SelectedAgent string
	SelectedModel string
}

// TaskRunner executes the work behind one task. The task service supervises
// it; the runner reports progress through the logger it is handed.
type TaskRunner interface {
	Run(ctx context.Context, task *domain.Task, logger TaskLogger) error
}

// TaskLogger is the append-only log sink bound to one task identity.
type TaskLogger interface {
	Info(ctx context.Context, message string) error
	Error(ctx context.Context, message string) error
	Success(ctx context.Context, message string) error
	Command(ctx context.Context, message string) error
	UpdateStatus(ctx context.Context, status domain.TaskStatus, errorMessage string) error
	UpdateProgress(ctx context.Context, progress int, message string) error
}

type SandboxService interface {
	RunFragment(ctx context.Context, input RunFragmentInput) (*domain.ExecutionResult, error)
	SnapshotFiles(ctx context.Context, sandboxID string, creds SandboxCredentials) ([]*domain.FileSystemNode, error)
	RunTerminalCommand(ctx context.Context, input TerminalCommandInput) (*domain.CommandResult, error)
	ReadSandboxFile(ctx context.Context, sandboxID, path string, creds SandboxCredentials) (string, error)
	WriteSandboxFile(ctx context.Context, sandboxID, path, content string, creds SandboxCredentials) error
}

type RunFragmentInput struct {
	Fragment    *domain.Fragment
	UserID      string
	Credentials SandboxCredentials
}

type TerminalCommandInput struct {
	SandboxID        string
	Command          string
	WorkingDirectory string
	Credentials      SandboxCredentials
}

type WorkspaceService interface {
	GetFileTree(ctx context.Context) ([]*domain.FileSystemNode, error)
	CreateFile(ctx context.Context, input CreateWorkspaceFileInput) (*domain.WorkspaceFile, error)
	GetFileContent(ctx context.Context, path string) (*domain.WorkspaceFile, error)
}

type CreateWorkspaceFileInput struct {
	Path        string
	IsDirectory bool
	Content     string
}

type SystemSettingService interface {
	SetSandboxAPIKey(ctx context.Context, key string) error
	GetSandboxAPIKey(ctx context.Context) (string, error)
}
