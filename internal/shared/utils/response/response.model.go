package response

type StandardApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`    // Payload for success
	Message string      `json:"message,omitempty"` // Human-readable message
	Error   string      `json:"error,omitempty"`   // Error summary
	Details interface{} `json:"details,omitempty"` // Validation or error details
}
