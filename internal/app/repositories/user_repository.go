package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/db"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/dberrors"
	"github.com/yigit/edutech/internal/pkg/logger"
)

var userColumns = []string{
	"id", "fullname", "email", "password_hash", "role", "is_admin", "photo",
	"title", "semester", "department", "dob",
	"reset_code", "reset_code_expires_at", "reset_code_verified",
	"created_at", "updated_at",
}

// UserRepository handles database operations for users
type UserRepository struct {
	DB db.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool db.Pool) *UserRepository {
	return &UserRepository{DB: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var role string
	err := row.Scan(
		&user.ID, &user.Fullname, &user.Email, &user.PasswordHash, &role, &user.IsAdmin, &user.Photo,
		&user.Title, &user.Semester, &user.Department, &user.DOB,
		&user.ResetCode, &user.ResetCodeExpiresAt, &user.ResetCodeVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.RoleType(role)
	return &user, nil
}

// Create inserts a user and returns its id
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	query := `
		INSERT INTO users (fullname, email, password_hash, role, is_admin, photo, title, semester, department, dob)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.DB.QueryRow(ctx, query,
		user.Fullname, strings.ToLower(user.Email), user.PasswordHash, string(user.Role), user.IsAdmin, user.Photo,
		user.Title, user.Semester, user.Department, user.DOB,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err, "users_email_key") {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create user query")
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return user.ID, nil
}

// FindByID retrieves a user with its registered course ids
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepository) findOne(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	sqlStr, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	user, err := scanUser(r.DB.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error finding user")
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := r.attachCourses(ctx, []*models.User{user}); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByIDs retrieves the users with the given ids; unknown ids are skipped
func (r *UserRepository) FindByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	builder := psql.Select(userColumns...).From("users").
		Where(squirrel.Expr("id = ANY(?)", ids)).
		OrderBy("id")
	return r.list(ctx, builder)
}

// List returns all users, optionally restricted to one role
func (r *UserRepository) List(ctx context.Context, role *models.RoleType) ([]*models.User, error) {
	builder := psql.Select(userColumns...).From("users").OrderBy("id")
	if role != nil {
		builder = builder.Where(squirrel.Eq{"role": string(*role)})
	}
	return r.list(ctx, builder)
}

func (r *UserRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.User, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	if err := r.attachCourses(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// attachCourses fills Courses for each user in registration order
func (r *UserRepository) attachCourses(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}

	byID := make(map[int64]*models.User, len(users))
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		u.Courses = []int64{}
		byID[u.ID] = u
		ids = append(ids, u.ID)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT user_id, course_id FROM user_courses WHERE user_id = ANY($1) ORDER BY user_id, position`, ids)
	if err != nil {
		return fmt.Errorf("failed to load user courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, courseID int64
		if err := rows.Scan(&userID, &courseID); err != nil {
			return fmt.Errorf("failed to scan user course: %w", err)
		}
		if u, ok := byID[userID]; ok {
			u.Courses = append(u.Courses, courseID)
		}
	}
	return rows.Err()
}

// UpdateProfile writes the editable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	sqlStr, args, err := psql.Update("users").
		Set("fullname", user.Fullname).
		Set("photo", user.Photo).
		Set("title", user.Title).
		Set("semester", user.Semester).
		Set("department", user.Department).
		Set("dob", user.DOB).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return err
	}

	return r.execOne(ctx, sqlStr, args...)
}

// SaveCredentials writes the password hash together with the reset state
func (r *UserRepository) SaveCredentials(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET password_hash = $1, reset_code = $2, reset_code_expires_at = $3, reset_code_verified = $4, updated_at = NOW()
		WHERE id = $5`

	return r.execOne(ctx, query, user.PasswordHash, user.ResetCode, user.ResetCodeExpiresAt, user.ResetCodeVerified, user.ID)
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error updating user")
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
