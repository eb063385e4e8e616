package ports

import (
	"context"
	"time"

	"github.com/fragbox/backend/internal/domain"
)

// SandboxCredentials are optional per-request tenant credentials forwarded to
// the execution provider.
type SandboxCredentials struct {
	TeamID      string
	AccessToken string
}

// SandboxCreateOptions configure provisioning of a new sandbox.
type SandboxCreateOptions struct {
	// Timeout is the provider-side idle timeout, independent of any
	// task-level deadline.
	Timeout     time.Duration
	Metadata    map[string]string
	Credentials SandboxCredentials
}

// CommandOptions configure a shell command run inside a sandbox.
type CommandOptions struct {
	Env     map[string]string
	Timeout time.Duration
	// Background starts the command without waiting for it to exit.
	Background bool
}

// SandboxHandle is a live execution environment. It is owned exclusively by
// the run that obtained it and is never shared across tasks.
type SandboxHandle interface {
	ID() string
	Template() string
	WriteFile(ctx context.Context, path, content string) error
	ReadFile(ctx context.Context, path string) (string, error)
	ListFiles(ctx context.Context, path string) ([]domain.SandboxFile, error)
	RunCommand(ctx context.Context, cmd string, opts CommandOptions) (*domain.CommandResult, error)
	RunCode(ctx context.Context, code string) (*domain.CodeExecution, error)
	// GetHost returns the externally reachable hostname for a sandbox port.
	GetHost(port int) string
	// SetTimeout refreshes the provider-side idle timeout.
	SetTimeout(ctx context.Context, timeout time.Duration) error
	Kill(ctx context.Context) error
}

// SandboxClient is the boundary to the external sandbox execution provider.
// Provider failures surface as the typed errors declared by the adapter, so
// call sites never inspect message strings.
type SandboxClient interface {
	Create(ctx context.Context, template string, opts SandboxCreateOptions) (SandboxHandle, error)
	Connect(ctx context.Context, sandboxID string, creds SandboxCredentials) (SandboxHandle, error)
	// Configured reports whether provider credentials are available at all.
	Configured(ctx context.Context) bool
}
