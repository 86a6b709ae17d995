package auth

// LoginInput represents the request body for login. An unseen username is
// registered with the given password.
type LoginInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}
