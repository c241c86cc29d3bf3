package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent  RoleType = "student"
	RoleLecturer RoleType = "lecturer"
	RoleAdmin    RoleType = "admin"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return true
	}
	return false
}

// Placeholder images used until a real upload replaces them
const (
	DefaultUserPhoto   = "https://i.ibb.co/4pDNDk1/avatar.png"
	DefaultCourseImage = "https://img.freepik.com/free-vector/online-certification-illustration_23-2148575636.jpg"
)
