package models

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileFormRequest carries raw form input. Values are text, as typed, and are
// coerced by the form engine.
type ProfileFormRequest struct {
	Fields map[string]string `json:"fields"`
}

type StepRequest struct {
	Fields map[string]string `json:"fields"`
}

type MessageRequest struct {
	Message string `json:"message"`
}

type SessionResponse struct {
	Token     string `json:"token"`
	AccountID string `json:"account_id"`
	Redirect  string `json:"redirect"`
	Message   string `json:"message,omitempty"`
}
