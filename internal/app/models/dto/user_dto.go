package dto

import (
	"time"

	"github.com/yigit/edutech/internal/app/models"
)

// PublicUser is the user projection returned to clients; it never carries
// the password hash or reset state.
type PublicUser struct {
	ID         int64     `json:"id"`
	Fullname   string    `json:"fullname"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsAdmin    bool      `json:"isAdmin"`
	Photo      string    `json:"photo"`
	Title      string    `json:"title"`
	Semester   string    `json:"semester"`
	Department string    `json:"department"`
	DOB        string    `json:"dob"`
	Courses    []int64   `json:"courses"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewPublicUser builds the public projection of a user
func NewPublicUser(u *models.User) PublicUser {
	courses := u.Courses
	if courses == nil {
		courses = []int64{}
	}
	return PublicUser{
		ID:         u.ID,
		Fullname:   u.Fullname,
		Email:      u.Email,
		Role:       string(u.Role),
		IsAdmin:    u.IsAdmin,
		Photo:      u.Photo,
		Title:      u.Title,
		Semester:   u.Semester,
		Department: u.Department,
		DOB:        u.DOB,
		Courses:    courses,
		CreatedAt:  u.CreatedAt,
	}
}

// NewPublicUsers projects a list of users
func NewPublicUsers(users []*models.User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, NewPublicUser(u))
	}
	return out
}

// UpdateProfileRequest is bound from the multipart profile form; the
// optional photo is read separately.
type UpdateProfileRequest struct {
	Fullname   string `form:"fullname" binding:"omitempty,min=2,max=100"`
	Title      string `form:"title" binding:"max=100"`
	Semester   string `form:"semester" binding:"max=50"`
	Department string `form:"department" binding:"max=100"`
	DOB        string `form:"dob" binding:"max=50"`
}
