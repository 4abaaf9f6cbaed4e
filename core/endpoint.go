package core

// Endpoint describes one route independently of the HTTP framework serving it.
type Endpoint struct {
	Path     string
	Method   string
	Metadata EndpointMetadata
}

type EndpointMetadata struct {
	OperationID  string
	Description  string
	RequiresAuth bool
}

// Key identifies the endpoint for conflict detection.
func (e Endpoint) Key() string {
	return e.Method + ":" + e.Path
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors,omitempty"`
}

// ValidationResponse is the body of a rejected register or login request.
type ValidationResponse struct {
	Errors []FieldError `json:"errors"`
}

// MessageResponse acknowledges a successful operation.
type MessageResponse struct {
	Message string `json:"message"`
}
