package dto

import (
	"github.com/fragbox/backend/internal/domain"
)

type RunSandboxRequest struct {
	Fragment    *FragmentPayload `json:"fragment"`
	UserID      string           `json:"userID,omitempty"`
	TeamID      string           `json:"teamID,omitempty"`
	AccessToken string           `json:"accessToken,omitempty"`
}

// FragmentPayload mirrors the generated fragment schema: single-file
// fragments carry code + file_path, multi-file fragments carry files.
type FragmentPayload struct {
	Template                   string                `json:"template"`
	Code                       string                `json:"code,omitempty"`
	Files                      []FragmentFilePayload `json:"files,omitempty"`
	HasAdditionalDependencies  bool                  `json:"has_additional_dependencies,omitempty"`
	InstallDependenciesCommand string                `json:"install_dependencies_command,omitempty"`
	StartCommand               string                `json:"start_command,omitempty"`
	FilePath                   string                `json:"file_path,omitempty"`
	Port                       int                   `json:"port,omitempty"`
}

type FragmentFilePayload struct {
	FilePath    string `json:"file_path"`
	FileContent string `json:"file_content"`
}

func (p *FragmentPayload) ToDomain() *domain.Fragment {
	if p == nil {
		return nil
	}

	files := make([]domain.FragmentFile, 0, len(p.Files))
	for _, f := range p.Files {
		files = append(files, domain.FragmentFile{Path: f.FilePath, Content: f.FileContent})
	}
	if len(files) == 0 {
		files = nil
	}

	return &domain.Fragment{
		Template:                   p.Template,
		Code:                       p.Code,
		Files:                      files,
		HasAdditionalDependencies:  p.HasAdditionalDependencies,
		InstallDependenciesCommand: p.InstallDependenciesCommand,
		StartCommand:               p.StartCommand,
		FilePath:                   p.FilePath,
		Port:                       p.Port,
	}
}

// RunSandboxInterpreterResponse is the flattened interpreter result body.
type RunSandboxInterpreterResponse struct {
	SbxID        string                     `json:"sbxId"`
	Template     string                     `json:"template"`
	Stdout       []string                   `json:"stdout"`
	Stderr       []string                   `json:"stderr"`
	RuntimeError *domain.RuntimeError       `json:"runtimeError,omitempty"`
	CellResults  []domain.CellResult        `json:"cellResults"`
	Files        []*domain.FileSystemNode   `json:"files"`
}

// RunSandboxWebResponse is the flattened web result body.
type RunSandboxWebResponse struct {
	SbxID    string                   `json:"sbxId"`
	Template string                   `json:"template"`
	URL      string                   `json:"url"`
	Files    []*domain.FileSystemNode `json:"files"`
}

// ExecutionResultToResponse flattens the tagged result union into the wire
// shape, one variant per run.
func ExecutionResultToResponse(result *domain.ExecutionResult) interface{} {
	if result.Interpreter != nil {
		return RunSandboxInterpreterResponse{
			SbxID:        result.SbxID,
			Template:     result.Template,
			Stdout:       result.Interpreter.Stdout,
			Stderr:       result.Interpreter.Stderr,
			RuntimeError: result.Interpreter.RuntimeError,
			CellResults:  result.Interpreter.CellResults,
			Files:        result.Interpreter.Files,
		}
	}
	return RunSandboxWebResponse{
		SbxID:    result.SbxID,
		Template: result.Template,
		URL:      result.Web.URL,
		Files:    result.Web.Files,
	}
}

type SandboxFilesResponse struct {
	Files []*domain.FileSystemNode `json:"files"`
}

type SandboxFileContentResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type WriteSandboxFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type WriteSandboxFileResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

type TerminalCommandRequest struct {
	Command          string `json:"command"`
	SbxID            string `json:"sbxId"`
	WorkingDirectory string `json:"workingDirectory,omitempty"`
	TeamID           string `json:"teamID,omitempty"`
	AccessToken      string `json:"accessToken,omitempty"`
}

type TerminalCommandResponse struct {
	Stdout           string `json:"stdout"`
	Stderr           string `json:"stderr"`
	ExitCode         int    `json:"exitCode"`
	WorkingDirectory string `json:"workingDirectory"`
	Error            string `json:"error,omitempty"`
}
