package models

import (
	"crypto/subtle"
	"time"

	"github.com/yigit/edutech/internal/pkg/auth"
)

// ResetCodeTTL is how long a password reset code stays usable
const ResetCodeTTL = time.Hour

// ResetState is the position of an account in the password reset flow
type ResetState int

const (
	ResetNone ResetState = iota
	ResetRequested
	ResetCodeVerified
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64    `json:"id" db:"id"`
	Fullname     string   `json:"fullname" db:"fullname"`
	Email        string   `json:"email" db:"email"`
	PasswordHash string   `json:"-" db:"password_hash"`
	Role         RoleType `json:"role" db:"role"`
	IsAdmin      bool     `json:"isAdmin" db:"is_admin"`
	Photo        string   `json:"photo" db:"photo"`
	Title        string   `json:"title" db:"title"`
	Semester     string   `json:"semester" db:"semester"`
	Department   string   `json:"department" db:"department"`
	DOB          string   `json:"dob" db:"dob"`

	ResetCode          *string    `json:"-" db:"reset_code"`
	ResetCodeExpiresAt *time.Time `json:"-" db:"reset_code_expires_at"`
	ResetCodeVerified  bool       `json:"-" db:"reset_code_verified"`

	// Courses lists registered course ids in registration order
	Courses []int64 `json:"courses"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// SetPassword replaces the stored hash. It always hashes with a fresh salt
// and must only be called from the credential mutation paths.
func (u *User) SetPassword(plain string) error {
	hash, err := auth.HashPassword(plain)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword compares plain against the stored hash
func (u *User) CheckPassword(plain string) bool {
	return auth.CheckPassword(u.PasswordHash, plain)
}

// ResetState derives the reset flow position from the stored fields
func (u *User) ResetState() ResetState {
	switch {
	case u.ResetCodeVerified && u.ResetCodeExpiresAt != nil:
		return ResetCodeVerified
	case u.ResetCode != nil && u.ResetCodeExpiresAt != nil:
		return ResetRequested
	default:
		return ResetNone
	}
}

// RequestReset moves the account to the requested state with a new code
func (u *User) RequestReset(code string, now time.Time) {
	expires := now.Add(ResetCodeTTL)
	u.ResetCode = &code
	u.ResetCodeExpiresAt = &expires
	u.ResetCodeVerified = false
}

// VerifyResetCode consumes code. The code is cleared on success so it
// cannot be used twice; the expiry is kept to bound the final reset step.
func (u *User) VerifyResetCode(code string, now time.Time) bool {
	if u.ResetState() != ResetRequested || u.resetExpired(now) {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*u.ResetCode), []byte(code)) != 1 {
		return false
	}
	u.ResetCode = nil
	u.ResetCodeVerified = true
	return true
}

// CanResetPassword reports whether a verified, unexpired reset is pending
func (u *User) CanResetPassword(now time.Time) bool {
	return u.ResetState() == ResetCodeVerified && !u.resetExpired(now)
}

// ClearReset drops all reset state
func (u *User) ClearReset() {
	u.ResetCode = nil
	u.ResetCodeExpiresAt = nil
	u.ResetCodeVerified = false
}

func (u *User) resetExpired(now time.Time) bool {
	return u.ResetCodeExpiresAt == nil || now.After(*u.ResetCodeExpiresAt)
}
