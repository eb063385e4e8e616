package services

import (
	"context"
	"fmt"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
)

// SandboxTaskRunner executes a natural-language task by provisioning a
// dedicated sandbox, preparing the repository workspace inside it and
// recording the sandbox URL and working branch on the task. The sandbox is
// left running on success so the user can attach a terminal to it; the
// provider reclaims it through its idle timeout.
type SandboxTaskRunner struct {
	client   ports.SandboxClient
	repo     ports.TaskRepository
	logger   *logger.Logger
	template string
}

type SandboxTaskRunnerConfig struct {
	Client   ports.SandboxClient
	Repo     ports.TaskRepository
	Logger   *logger.Logger
	Template string
}

func NewSandboxTaskRunner(cfg SandboxTaskRunnerConfig) ports.TaskRunner {
	template := cfg.Template
	if template == "" {
		template = domain.TemplateCodeInterpreter
	}
	return &SandboxTaskRunner{
		client:   cfg.Client,
		repo:     cfg.Repo,
		logger:   cfg.Logger,
		template: template,
	}
}

func (r *SandboxTaskRunner) Run(ctx context.Context, task *domain.Task, tl ports.TaskLogger) error {
	if !r.client.Configured(ctx) {
		return ErrSandboxNotConfigured
	}

	_ = tl.UpdateProgress(ctx, 25, "Setting up environment...")

	sbx, err := r.client.Create(ctx, r.template, ports.SandboxCreateOptions{
		Timeout: sandboxIdleTimeout,
		Metadata: map[string]string{
			"taskID":   task.ID,
			"agent":    task.SelectedAgent,
			"template": r.template,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSandboxCreation, err)
	}
	r.logger.Infow("task_sandbox_created", "task_id", task.ID, "sandbox_id", sbx.ID())

	branch := fmt.Sprintf("fragbox/task-%.8s", task.ID)

	if err := r.prepareWorkspace(ctx, sbx, task, tl, branch); err != nil {
		if killErr := sbx.Kill(ctx); killErr != nil {
			r.logger.Warnw("task_sandbox_kill_failed", "task_id", task.ID, "sandbox_id", sbx.ID(), "error", killErr)
		}
		return fmt.Errorf("%w: %v", ErrSandboxExecution, err)
	}

	_ = tl.UpdateProgress(ctx, 75, "Finalizing results...")

	sandboxURL := "https://" + sbx.GetHost(domain.DefaultWebPort)
	if err := r.repo.SetRunResult(ctx, task.ID, sandboxURL, branch); err != nil {
		return err
	}

	_ = tl.Success(ctx, "Sandbox environment ready: "+sandboxURL)
	return nil
}

func (r *SandboxTaskRunner) prepareWorkspace(ctx context.Context, sbx ports.SandboxHandle, task *domain.Task, tl ports.TaskLogger, branch string) error {
	_ = tl.UpdateProgress(ctx, 50, "Processing request...")

	if task.RepoURL != "" {
		clone := fmt.Sprintf("git clone %q workspace", task.RepoURL)
		_ = tl.Command(ctx, clone)
		if _, err := sbx.RunCommand(ctx, clone, ports.CommandOptions{}); err != nil {
			return fmt.Errorf("clone repository: %v", err)
		}

		checkout := fmt.Sprintf("cd workspace && git checkout -b %q", branch)
		_ = tl.Command(ctx, checkout)
		if _, err := sbx.RunCommand(ctx, checkout, ports.CommandOptions{}); err != nil {
			return fmt.Errorf("create branch: %v", err)
		}
	} else {
		_ = tl.Command(ctx, "mkdir -p workspace")
		if _, err := sbx.RunCommand(ctx, "mkdir -p workspace", ports.CommandOptions{}); err != nil {
			return fmt.Errorf("create workspace: %v", err)
		}
	}

	// The task prompt travels with the workspace so the coding agent attached
	// to this sandbox can pick it up.
	if err := sbx.WriteFile(ctx, defaultWorkingDir+"/workspace/TASK.md", task.Prompt); err != nil {
		return fmt.Errorf("write task prompt: %v", err)
	}

	return nil
}
