package dto

// SignUpRequest is the body of the /auth bootstrap sign-up
type SignUpRequest struct {
	Fullname string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUpResponse mirrors the fields the bootstrap client expects
type SignUpResponse struct {
	Success  bool   `json:"success"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// SignInRequest represents login credentials
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignInResponse is returned by the /auth bootstrap sign-in
type SignInResponse struct {
	Success  bool   `json:"success"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// AuthStatusResponse reports whether the request carried a valid identity cookie
type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Message       string `json:"message"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Fullname string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=student lecturer admin"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	Password    string `json:"password" binding:"required,strongpassword"`
}

// VerifyResetCodeRequest carries the emailed reset code
type VerifyResetCodeRequest struct {
	Code string `json:"code" binding:"required,numeric,len=4"`
}

// ResetPasswordRequest carries the new password for a verified reset
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}
