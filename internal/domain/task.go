package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ==================== ENUMS ====================

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusError      TaskStatus = "error"
)

// IsTerminal reports whether no further transition can leave the status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusError
}

type TaskLogType string

const (
	TaskLogInfo    TaskLogType = "info"
	TaskLogError   TaskLogType = "error"
	TaskLogSuccess TaskLogType = "success"
	TaskLogCommand TaskLogType = "command"
)

// ==================== ENTITIES ====================

// TaskLog is a single immutable log entry owned by its parent task.
type TaskLog struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      TaskLogType `json:"type"`
	Message   string      `json:"message"`
}

func newTaskLog(logType TaskLogType, message string) TaskLog {
	return TaskLog{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Type:      logType,
		Message:   message,
	}
}

func NewInfoLog(message string) TaskLog    { return newTaskLog(TaskLogInfo, message) }
func NewErrorLog(message string) TaskLog   { return newTaskLog(TaskLogError, message) }
func NewSuccessLog(message string) TaskLog { return newTaskLog(TaskLogSuccess, message) }
func NewCommandLog(message string) TaskLog { return newTaskLog(TaskLogCommand, message) }

// TaskLogs is the ordered, append-only log sequence stored as a JSON blob.
// Scan accepts []byte and string so both the postgres and sqlite drivers work.
type TaskLogs []TaskLog

func (l TaskLogs) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(TaskLogs{})
	}
	return json.Marshal(l)
}

func (l *TaskLogs) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("failed to scan TaskLogs: invalid type")
	}
}

// Task is a persisted unit of requested work.
type Task struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Status   TaskStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Progress int        `gorm:"default:0" json:"progress"`
	Prompt   string     `gorm:"type:text;not null" json:"prompt"`

	RepoURL       string `gorm:"size:512" json:"repo_url,omitempty"`
	SelectedAgent string `gorm:"size:100" json:"selected_agent,omitempty"`
	SelectedModel string `gorm:"size:100" json:"selected_model,omitempty"`

	// Populated by the orchestration protocol on success.
	SandboxURL string `gorm:"size:512" json:"sandbox_url,omitempty"`
	BranchName string `gorm:"size:255" json:"branch_name,omitempty"`

	Logs TaskLogs `gorm:"type:jsonb" json:"logs"`
}
