package request

type Chat struct {
	Message   string `json:"message" validate:"required,min=1,max=2000"`
	SessionID string `json:"session_id"`
	UserID    *int64 `json:"user_id" validate:"omitempty,min=1"`
}
