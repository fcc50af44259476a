package dto

// Data Transfer Objects for registration and token issuance

// SignupRequest: payload for user registration. No password anywhere in the
// flow; the confirmation code arrives out-of-band.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Username string `json:"username" binding:"required,max=150"`
}

// SignupResponse echoes the accepted pair back.
type SignupResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// TokenRequest: payload exchanging a confirmation code for an access token.
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse: the signed access token. Access-only, no refresh flow.
type TokenResponse struct {
	Token string `json:"token"`
}
