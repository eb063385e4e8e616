package services

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/filetree"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// Provider-side idle timeout for sandboxes, independent of the task-level
	// deadline.
	sandboxIdleTimeout = 10 * time.Minute

	terminalCommandTimeout = 30 * time.Second
	defaultWorkingDir      = "/home/user"
)

// pnpm is not available in the execution templates; commands are rewritten to
// npm before they reach the sandbox.
var pnpmRe = regexp.MustCompile(`\bpnpm\b`)

type SandboxService struct {
	client    ports.SandboxClient
	logger    *logger.Logger
	filesRoot string
	skip      filetree.SkipFunc
}

type SandboxServiceConfig struct {
	Client ports.SandboxClient
	Logger *logger.Logger
	// FilesRoot is the directory snapshotted after execution.
	FilesRoot string
}

func NewSandboxService(cfg SandboxServiceConfig) ports.SandboxService {
	root := cfg.FilesRoot
	if root == "" {
		root = defaultWorkingDir
	}
	return &SandboxService{
		client:    cfg.Client,
		logger:    cfg.Logger,
		filesRoot: root,
		skip:      filetree.SkipNamed("node_modules"),
	}
}

// RunFragment drives the full orchestration protocol for one fragment:
// provision, deploy, execute, snapshot, and teardown on failure. Calling it
// twice creates two sandboxes; the caller guarantees at most one invocation
// per task.
func (s *SandboxService) RunFragment(ctx context.Context, input ports.RunFragmentInput) (*domain.ExecutionResult, error) {
	fragment := input.Fragment
	if fragment == nil {
		return nil, ErrFragmentMissing
	}
	if fragment.Code == "" && len(fragment.Files) == 0 {
		return nil, ErrFragmentMissingCode
	}
	if !s.configured(ctx, input.Credentials) {
		return nil, ErrSandboxNotConfigured
	}

	sbx, err := s.client.Create(ctx, fragment.Template, ports.SandboxCreateOptions{
		Timeout: sandboxIdleTimeout,
		Metadata: map[string]string{
			"template": fragment.Template,
			"userID":   input.UserID,
			"teamID":   input.Credentials.TeamID,
		},
		Credentials: input.Credentials,
	})
	if err != nil {
		// Nothing was created, nothing to clean up.
		s.logger.Errorw("sandbox_create_failed", "template", fragment.Template, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSandboxCreation, err)
	}

	s.logger.Infow("sandbox_created", "sandbox_id", sbx.ID(), "template", fragment.Template)

	result, err := s.execute(ctx, sbx, fragment)
	if err != nil {
		// Best-effort teardown. A failed kill never masks the execution
		// error being reported.
		if killErr := sbx.Kill(ctx); killErr != nil {
			s.logger.Warnw("sandbox_kill_failed", "sandbox_id", sbx.ID(), "error", killErr)
		}
		s.logger.Errorw("sandbox_execution_failed", "sandbox_id", sbx.ID(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}

	return result, nil
}

func (s *SandboxService) execute(ctx context.Context, sbx ports.SandboxHandle, fragment *domain.Fragment) (*domain.ExecutionResult, error) {
	// Install before deploying code: the install command may mutate the
	// working directory, so it never runs concurrently with file writes.
	if fragment.HasAdditionalDependencies {
		if _, err := sbx.RunCommand(ctx, fragment.InstallDependenciesCommand, ports.CommandOptions{}); err != nil {
			return nil, fmt.Errorf("install dependencies: %v", err)
		}
	}

	if err := s.deployCode(ctx, sbx, fragment); err != nil {
		return nil, err
	}

	if fragment.IsInterpreter() {
		return s.runInterpreter(ctx, sbx, fragment)
	}
	return s.runWeb(ctx, sbx, fragment)
}

// deployCode writes the fragment's code into the sandbox. Multi-file
// fragments are written concurrently; the writes are independent and
// order-free by design.
func (s *SandboxService) deployCode(ctx context.Context, sbx ports.SandboxHandle, fragment *domain.Fragment) error {
	if len(fragment.Files) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		for _, file := range fragment.Files {
			file := file
			g.Go(func() error {
				return sbx.WriteFile(gctx, file.Path, file.Content)
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("write files: %v", err)
		}
		return nil
	}

	if err := sbx.WriteFile(ctx, fragment.FilePath, fragment.Code); err != nil {
		return fmt.Errorf("write file %s: %v", fragment.FilePath, err)
	}
	return nil
}

func (s *SandboxService) runInterpreter(ctx context.Context, sbx ports.SandboxHandle, fragment *domain.Fragment) (*domain.ExecutionResult, error) {
	exec, err := sbx.RunCode(ctx, fragment.Code)
	if err != nil {
		return nil, fmt.Errorf("run code: %v", err)
	}

	return &domain.ExecutionResult{
		SbxID:    sbx.ID(),
		Template: fragment.Template,
		Interpreter: &domain.InterpreterResult{
			Stdout:       exec.Stdout,
			Stderr:       exec.Stderr,
			RuntimeError: exec.Error,
			CellResults:  exec.Results,
			Files:        s.snapshot(ctx, sbx),
		},
	}, nil
}

func (s *SandboxService) runWeb(ctx context.Context, sbx ports.SandboxHandle, fragment *domain.Fragment) (*domain.ExecutionResult, error) {
	port := fragment.WebPort()
	// Templates without a start command run their own server; only explicit
	// start commands are launched here.
	if fragment.StartCommand != "" {
		if _, err := sbx.RunCommand(ctx, fragment.StartCommand, ports.CommandOptions{
			Env:        map[string]string{"PORT": strconv.Itoa(port)},
			Background: true,
		}); err != nil {
			return nil, fmt.Errorf("start server: %v", err)
		}
	}

	return &domain.ExecutionResult{
		SbxID:    sbx.ID(),
		Template: fragment.Template,
		Web: &domain.WebResult{
			URL:   "https://" + sbx.GetHost(port),
			Files: s.snapshot(ctx, sbx),
		},
	}, nil
}

// snapshot lists the sandbox file tree for display. Listing failures degrade
// to an empty tree so a finished run is still reported.
func (s *SandboxService) snapshot(ctx context.Context, sbx ports.SandboxHandle) []*domain.FileSystemNode {
	listing, err := sbx.ListFiles(ctx, s.filesRoot)
	if err != nil {
		s.logger.Warnw("sandbox_snapshot_failed", "sandbox_id", sbx.ID(), "error", err)
		return []*domain.FileSystemNode{}
	}
	return filetree.FromSandboxListing(listing, s.skip)
}

// configured reports whether any provider credential is available: per-request
// tenant credentials first, then the server-side key (config or stored).
func (s *SandboxService) configured(ctx context.Context, creds ports.SandboxCredentials) bool {
	if creds.TeamID != "" && creds.AccessToken != "" {
		return true
	}
	return s.client.Configured(ctx)
}

// SnapshotFiles fetches the file tree of an existing sandbox by id.
func (s *SandboxService) SnapshotFiles(ctx context.Context, sandboxID string, creds ports.SandboxCredentials) ([]*domain.FileSystemNode, error) {
	if !s.configured(ctx, creds) {
		return nil, ErrSandboxNotConfigured
	}

	sbx, err := s.client.Connect(ctx, sandboxID, creds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}

	listing, err := sbx.ListFiles(ctx, s.filesRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}
	return filetree.FromSandboxListing(listing, s.skip), nil
}

// resolvePath normalizes a client-supplied file path and confines it to the
// workspace directory. Relative paths are joined under the workspace root;
// anything that escapes it after cleaning is rejected.
func (s *SandboxService) resolvePath(p string) (string, error) {
	if p == "" {
		return "", ErrSandboxPathInvalid
	}

	resolved := p
	if !strings.HasPrefix(resolved, s.filesRoot) {
		resolved = path.Join(s.filesRoot, resolved)
	}
	resolved = path.Clean(resolved)

	if resolved != s.filesRoot && !strings.HasPrefix(resolved, s.filesRoot+"/") {
		return "", ErrSandboxPathInvalid
	}
	return resolved, nil
}

// ReadSandboxFile fetches the content of one file from a running sandbox.
func (s *SandboxService) ReadSandboxFile(ctx context.Context, sandboxID, filePath string, creds ports.SandboxCredentials) (string, error) {
	resolved, err := s.resolvePath(filePath)
	if err != nil {
		return "", err
	}
	if !s.configured(ctx, creds) {
		return "", ErrSandboxNotConfigured
	}

	sbx, err := s.client.Connect(ctx, sandboxID, creds)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}

	content, err := sbx.ReadFile(ctx, resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}
	return content, nil
}

// WriteSandboxFile writes content to one file in a running sandbox.
func (s *SandboxService) WriteSandboxFile(ctx context.Context, sandboxID, filePath, content string, creds ports.SandboxCredentials) error {
	resolved, err := s.resolvePath(filePath)
	if err != nil {
		return err
	}
	if !s.configured(ctx, creds) {
		return ErrSandboxNotConfigured
	}

	sbx, err := s.client.Connect(ctx, sandboxID, creds)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}

	if err := sbx.WriteFile(ctx, resolved, content); err != nil {
		return fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}
	return nil
}

// RunTerminalCommand runs one shell command in an existing sandbox on behalf
// of the interactive terminal.
func (s *SandboxService) RunTerminalCommand(ctx context.Context, input ports.TerminalCommandInput) (*domain.CommandResult, error) {
	if input.Command == "" || input.SandboxID == "" {
		return nil, ErrTerminalInvalidInput
	}
	if !s.configured(ctx, input.Credentials) {
		return nil, ErrSandboxNotConfigured
	}

	workdir := input.WorkingDirectory
	if workdir == "" {
		workdir = defaultWorkingDir
	}

	sbx, err := s.client.Connect(ctx, input.SandboxID, input.Credentials)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}

	// Interactive use keeps the sandbox alive; refresh its idle timeout on
	// every command, best-effort.
	if err := sbx.SetTimeout(ctx, sandboxIdleTimeout); err != nil {
		s.logger.Warnw("sandbox_timeout_refresh_failed", "sandbox_id", sbx.ID(), "error", err)
	}

	sanitized := pnpmRe.ReplaceAllString(input.Command, "npm")
	full := fmt.Sprintf("cd %q && %s", workdir, sanitized)

	result, err := sbx.RunCommand(ctx, full, ports.CommandOptions{Timeout: terminalCommandTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}

	if result.ExitCode == 127 && result.Stderr == "" {
		name := strings.Fields(sanitized)[0]
		result.Stderr = fmt.Sprintf(
			"Command '%s' not found. Available commands: ls, cd, pwd, cat, echo, node, npm, python3, git", name)
	}

	return result, nil
}
