package dto

// Request bodies are bound leniently: missing fields arrive as "" and the
// service reports which ones are required. The password limit is in bytes,
// so only the service checks it.
type RegisterRequest struct {
	Email    string `json:"email" validate:"max=255"`
	Password string `json:"password"`
	Name     string `json:"name" validate:"max=120"`
}

// LoginRequest carries no length rules: an oversized credential is just a
// wrong one.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID     uint   `json:"user_id"`
	ShortToken string `json:"short_token"`
	Message    string `json:"message"`
}

type LoginResponse struct {
	Token      string `json:"token"`
	UserID     uint   `json:"user_id"`
	ShortToken string `json:"short_token"`
	Message    string `json:"message"`
}

type ExistsResponse struct {
	Message string `json:"message"`
	Exists  bool   `json:"exists"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyResponse struct {
	Valid bool         `json:"valid"`
	User  UserIdentity `json:"user"`
}

type DeleteAccountResponse struct {
	Message string       `json:"message"`
	User    UserIdentity `json:"user"`
}
