package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor applied to every new password hash
const BcryptCost = 10

// HashPassword hashes a plaintext password with a fresh salt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches the stored hash
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
