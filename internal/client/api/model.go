package api

// User is the public user shape returned by the server.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ChallengeSent answers requests that make the server send a code.
type ChallengeSent struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// AuthResult carries a fresh session.
type AuthResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type ProfileResult struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type LogoutResult struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailOnly struct {
	Email string `json:"email"`
}

type emailCode struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type errorBody struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error"`
}
