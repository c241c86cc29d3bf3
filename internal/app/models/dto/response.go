package dto

// APIResponse is the envelope for successful responses
type APIResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message,omitempty" example:"Course created successfully"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// SuccessResponse represents a message-only success response
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}
