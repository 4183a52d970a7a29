package request

// Chat holds the request body for one turn of the ordering assistant.
type Chat struct {
	SessionID string `json:"session_id" validate:"required,min=1,max=128"`
	Message   string `json:"message" validate:"required,min=1,max=4000"`
}
