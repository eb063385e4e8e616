package dto

import (
	"strings"

	"github.com/fragbox/backend/internal/domain"
)

type CreateTaskRequest struct {
	Prompt        string `json:"prompt"`
	RepoURL       string `json:"repoUrl,omitempty"`
	SelectedAgent string `json:"selectedAgent,omitempty"`
	SelectedModel string `json:"selectedModel,omitempty"`
}

func (r *CreateTaskRequest) Validate() []string {
	var errors []string

	if strings.TrimSpace(r.Prompt) == "" {
		errors = append(errors, "prompt is required")
	}

	return errors
}

type TaskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type TaskResponse struct {
	Task *domain.Task `json:"task"`
}

type DeleteTasksResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// ParseDeleteActions maps the comma-separated action parameter to task
// statuses. "failed" addresses tasks in status error.
func ParseDeleteActions(action string) ([]domain.TaskStatus, []string) {
	var statuses []domain.TaskStatus
	var invalid []string

	for _, raw := range strings.Split(action, ",") {
		switch strings.TrimSpace(raw) {
		case "completed":
			statuses = append(statuses, domain.TaskStatusCompleted)
		case "failed":
			statuses = append(statuses, domain.TaskStatusError)
		case "":
		default:
			invalid = append(invalid, strings.TrimSpace(raw))
		}
	}

	return statuses, invalid
}
