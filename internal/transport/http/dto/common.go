package dto

// ErrorResponse is the uniform error body. Type carries the error
// classification for the sandbox endpoints (validation_error, config_error,
// sandbox_creation_error, execution_error, unknown_error).
type ErrorResponse struct {
	Error   string      `json:"error"`
	Type    string      `json:"type,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
