package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fragbox/backend/internal/domain"
)

func TestCreateTaskRequestValidate(t *testing.T) {
	tests := map[string]struct {
		req    CreateTaskRequest
		expLen int
	}{
		"Valid":             {req: CreateTaskRequest{Prompt: "do the thing"}},
		"Empty prompt":      {req: CreateTaskRequest{}, expLen: 1},
		"Whitespace prompt": {req: CreateTaskRequest{Prompt: "  \t"}, expLen: 1},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Len(t, test.req.Validate(), test.expLen)
		})
	}
}

func TestParseDeleteActions(t *testing.T) {
	tests := map[string]struct {
		action      string
		expStatuses []domain.TaskStatus
		expInvalid  []string
	}{
		"Completed": {
			action:      "completed",
			expStatuses: []domain.TaskStatus{domain.TaskStatusCompleted},
		},
		"Failed maps to error status": {
			action:      "failed",
			expStatuses: []domain.TaskStatus{domain.TaskStatusError},
		},
		"Both with whitespace": {
			action:      "completed, failed",
			expStatuses: []domain.TaskStatus{domain.TaskStatusCompleted, domain.TaskStatusError},
		},
		"Unknown token": {
			action:     "pending",
			expInvalid: []string{"pending"},
		},
		"Mixed valid and invalid": {
			action:      "completed,bogus",
			expStatuses: []domain.TaskStatus{domain.TaskStatusCompleted},
			expInvalid:  []string{"bogus"},
		},
		"Empty tokens are skipped": {
			action:      "completed,,",
			expStatuses: []domain.TaskStatus{domain.TaskStatusCompleted},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			statuses, invalid := ParseDeleteActions(test.action)
			assert.Equal(t, test.expStatuses, statuses)
			assert.Equal(t, test.expInvalid, invalid)
		})
	}
}
