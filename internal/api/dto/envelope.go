package dto

// ErrorBody is the error payload of a failure envelope.
type ErrorBody struct {
	Code        string         `json:"code"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
}

// SuccessEnvelope is the uniform wrapper for successful responses. Data is
// always serialized, even when null.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// FailureEnvelope is the uniform wrapper for failed responses.
type FailureEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Error   ErrorBody `json:"error"`
}

// NewSuccess builds a success envelope.
func NewSuccess(message string, data any) SuccessEnvelope {
	return SuccessEnvelope{Success: true, Message: message, Data: data}
}

// NewFailure builds a failure envelope.
func NewFailure(message string, body ErrorBody) FailureEnvelope {
	return FailureEnvelope{Success: false, Message: message, Error: body}
}
