package services

import (
	"github.com/yigit/edutech/internal/app/repositories"
	"github.com/yigit/edutech/internal/pkg/auth"
	"github.com/yigit/edutech/internal/pkg/email"
	"github.com/yigit/edutech/internal/pkg/filestorage"
	"github.com/yigit/edutech/internal/pkg/logger"
)

// Services holds all the service instances
type Services struct {
	AuthService   *AuthService
	UserService   *UserService
	CourseService *CourseService
}

// NewServices wires the services over the given repositories and relays
func NewServices(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	fileStorage filestorage.FileStorage,
	emailService email.EmailService,
) *Services {
	return &Services{
		AuthService:   NewAuthService(repos.UserRepository, jwtService, emailService, logger.Component("auth")),
		UserService:   NewUserService(repos.UserRepository, fileStorage, logger.Component("user")),
		CourseService: NewCourseService(repos.CourseRepository, repos.UserRepository, fileStorage, logger.Component("course")),
	}
}
