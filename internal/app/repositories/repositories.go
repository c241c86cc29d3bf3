package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/db"
)

// psql builds PostgreSQL statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// IUserRepository is the persistence contract of the credential store
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	List(ctx context.Context, role *models.RoleType) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SaveCredentials(ctx context.Context, user *models.User) error
}

// ICourseRepository is the persistence contract of the course registry
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	ListByLecturer(ctx context.Context, lecturerID int64) ([]*models.Course, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Course, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	AddFile(ctx context.Context, file *models.CourseFile) error
	AddLecturer(ctx context.Context, courseID, lecturerID int64) error
	RegisterStudent(ctx context.Context, courseID, studentID int64) error
	AddAssignment(ctx context.Context, assignment *models.Assignment) error
	AddSubmission(ctx context.Context, submission *models.Submission) error
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository   *UserRepository
	CourseRepository *CourseRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool db.Pool) *Repositories {
	return &Repositories{
		UserRepository:   NewUserRepository(pool),
		CourseRepository: NewCourseRepository(pool),
	}
}
