package dto

import "github.com/fragbox/backend/internal/domain"

type CreateWorkspaceFileRequest struct {
	Path        string `json:"path"`
	IsDirectory bool   `json:"isDirectory"`
	Content     string `json:"content,omitempty"`
}

func (r *CreateWorkspaceFileRequest) Validate() []string {
	var errors []string

	if r.Path == "" {
		errors = append(errors, "path is required")
	}

	return errors
}

type CreateWorkspaceFileResponse struct {
	Success bool                  `json:"success"`
	File    *domain.WorkspaceFile `json:"file"`
}

type WorkspaceFileContentResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type UpdateSandboxKeyRequest struct {
	APIKey string `json:"api_key"`
}
