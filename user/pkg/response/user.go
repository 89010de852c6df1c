package response

type Auth struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

type ForgotPassword struct {
	Message    string `json:"message"`
	DebugToken string `json:"debug_token,omitempty"`
}
