package services

import "errors"

// Task errors
var (
	ErrTaskInvalidInput       = errors.New("task: prompt is required")
	ErrTaskNotFound           = errors.New("task: not found")
	ErrTaskStatusNotDeletable = errors.New("task: only completed or error tasks can be deleted")
	ErrTaskTimeout            = errors.New("task: execution timed out")
)

// Sandbox errors
var (
	ErrFragmentMissing      = errors.New("sandbox: missing fragment data")
	ErrFragmentMissingCode  = errors.New("sandbox: missing code data")
	ErrSandboxNotConfigured = errors.New("sandbox: execution provider is not configured")
	ErrSandboxCreation      = errors.New("sandbox: failed to create sandbox environment")
	ErrSandboxExecution     = errors.New("sandbox: code execution failed")
	ErrSandboxPathInvalid   = errors.New("sandbox: path escapes the workspace directory")
)

// Terminal errors
var (
	ErrTerminalInvalidInput = errors.New("terminal: command and sandbox id are required")
)

// Workspace errors
var (
	ErrWorkspacePathRequired = errors.New("workspace: path is required")
	ErrWorkspaceFileNotFound = errors.New("workspace: file not found")
)

// Settings errors
var (
	ErrSettingValueRequired = errors.New("setting: value is required")
)
