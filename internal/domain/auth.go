package domain

import "encoding/json"

// Login result messages shown to the operator.
const (
	MsgNetworkError = "Network error. Please try again."
	MsgLoginFailed  = "Login failed"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body of POST /api/auth/admin/login.
type LoginResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Token   string          `json:"token,omitempty"`
	Admin   json.RawMessage `json:"admin,omitempty"`
}

// LoginResult is what a login attempt resolves to. Exactly one of Message
// (on success) or Error (on failure) is meaningful.
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
