package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/db"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/dberrors"
	"github.com/yigit/edutech/internal/pkg/logger"
)

var courseColumns = []string{"c.id", "c.title", "c.description", "c.code", "c.image", "c.created_at", "c.updated_at"}

// CourseRepository handles database operations for courses and their
// membership, material, assignment and submission rows.
type CourseRepository struct {
	DB db.Pool
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(pool db.Pool) *CourseRepository {
	return &CourseRepository{DB: pool}
}

func (r *CourseRepository) selectCourses() squirrel.SelectBuilder {
	return psql.Select(courseColumns...).From("courses c")
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Code, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.LecturerIDs = []int64{}
	c.StudentIDs = []int64{}
	c.Files = []models.CourseFile{}
	c.Assignments = []models.Assignment{}
	return &c, nil
}

// Create inserts a course and fills in its generated fields
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (int64, error) {
	sqlStr, args, err := psql.Insert("courses").
		Columns("title", "description", "code", "image").
		Values(course.Title, course.Description, course.Code, course.Image).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return 0, err
	}

	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create course query")
		return 0, fmt.Errorf("failed to create course: %w", err)
	}
	return course.ID, nil
}

// FindByID retrieves a course with all of its relations
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	sqlStr, args, err := r.selectCourses().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	course, err := scanCourse(r.DB.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error finding course")
		return nil, fmt.Errorf("failed to find course: %w", err)
	}

	if err := r.loadRelations(ctx, []*models.Course{course}); err != nil {
		return nil, err
	}
	return course, nil
}

// List returns every course, oldest first
func (r *CourseRepository) List(ctx context.Context) ([]*models.Course, error) {
	return r.list(ctx, r.selectCourses().OrderBy("c.id"))
}

// ListByLecturer returns the courses the lecturer is assigned to
func (r *CourseRepository) ListByLecturer(ctx context.Context, lecturerID int64) ([]*models.Course, error) {
	return r.list(ctx, r.selectCourses().
		Join("course_lecturers cl ON cl.course_id = c.id").
		Where(squirrel.Eq{"cl.lecturer_id": lecturerID}).
		OrderBy("c.id"))
}

// ListByStudent returns the student's courses in registration order
func (r *CourseRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Course, error) {
	return r.list(ctx, r.selectCourses().
		Join("user_courses uc ON uc.course_id = c.id").
		Where(squirrel.Eq{"uc.user_id": studentID}).
		OrderBy("uc.position"))
}

func (r *CourseRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.Course, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing courses")
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}

	if err := r.loadRelations(ctx, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// loadRelations fills membership lists, files and assignments for a batch
// of courses with one query per relation.
func (r *CourseRepository) loadRelations(ctx context.Context, courses []*models.Course) error {
	if len(courses) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Course, len(courses))
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	if err := r.loadMembers(ctx, ids, byID,
		`SELECT course_id, lecturer_id FROM course_lecturers WHERE course_id = ANY($1) ORDER BY assigned_at, lecturer_id`,
		func(c *models.Course, id int64) { c.LecturerIDs = append(c.LecturerIDs, id) }); err != nil {
		return fmt.Errorf("failed to load course lecturers: %w", err)
	}

	if err := r.loadMembers(ctx, ids, byID,
		`SELECT course_id, student_id FROM course_students WHERE course_id = ANY($1) ORDER BY joined_at, student_id`,
		func(c *models.Course, id int64) { c.StudentIDs = append(c.StudentIDs, id) }); err != nil {
		return fmt.Errorf("failed to load course students: %w", err)
	}

	if err := r.loadFiles(ctx, ids, byID); err != nil {
		return fmt.Errorf("failed to load course files: %w", err)
	}

	if err := r.loadAssignments(ctx, ids, byID); err != nil {
		return fmt.Errorf("failed to load assignments: %w", err)
	}
	return nil
}

func (r *CourseRepository) loadMembers(ctx context.Context, ids []int64, byID map[int64]*models.Course, query string, add func(*models.Course, int64)) error {
	rows, err := r.DB.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var courseID, memberID int64
		if err := rows.Scan(&courseID, &memberID); err != nil {
			return err
		}
		if c, ok := byID[courseID]; ok {
			add(c, memberID)
		}
	}
	return rows.Err()
}

func (r *CourseRepository) loadFiles(ctx context.Context, ids []int64, byID map[int64]*models.Course) error {
	rows, err := r.DB.Query(ctx,
		`SELECT id, course_id, file_name, uploader_id, file_url, created_at FROM course_files WHERE course_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f models.CourseFile
		if err := rows.Scan(&f.ID, &f.CourseID, &f.FileName, &f.UploaderID, &f.FileURL, &f.CreatedAt); err != nil {
			return err
		}
		if c, ok := byID[f.CourseID]; ok {
			c.Files = append(c.Files, f)
		}
	}
	return rows.Err()
}

func (r *CourseRepository) loadAssignments(ctx context.Context, ids []int64, byID map[int64]*models.Course) error {
	rows, err := r.DB.Query(ctx,
		`SELECT id, course_id, title, file_url, lecturer_id, deadline, created_at FROM assignments WHERE course_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}

	assignments := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Title, &a.FileURL, &a.LecturerID, &a.Deadline, &a.CreatedAt); err != nil {
			rows.Close()
			return err
		}
		a.Submissions = []models.Submission{}
		assignments = append(assignments, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(assignments) == 0 {
		return nil
	}

	submissions, err := r.loadSubmissions(ctx, ids)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		a.Submissions = append(a.Submissions, submissions[a.ID]...)
		if c, ok := byID[a.CourseID]; ok {
			c.Assignments = append(c.Assignments, a)
		}
	}
	return nil
}

func (r *CourseRepository) loadSubmissions(ctx context.Context, courseIDs []int64) (map[int64][]models.Submission, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT s.id, s.assignment_id, s.student_id, s.file_url, s.submitted_at
		FROM assignment_submissions s
		JOIN assignments a ON a.id = s.assignment_id
		WHERE a.course_id = ANY($1)
		ORDER BY s.id`, courseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byAssignment := map[int64][]models.Submission{}
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.FileURL, &s.SubmittedAt); err != nil {
			return nil, err
		}
		byAssignment[s.AssignmentID] = append(byAssignment[s.AssignmentID], s)
	}
	return byAssignment, rows.Err()
}

// Exists reports whether a course with the id exists
func (r *CourseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check course: %w", err)
	}
	return exists, nil
}

// Delete removes a course; embedded rows go with it via ON DELETE CASCADE
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error deleting course")
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// AddFile appends a course material entry
func (r *CourseRepository) AddFile(ctx context.Context, file *models.CourseFile) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO course_files (course_id, file_name, uploader_id, file_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		file.CourseID, file.FileName, file.UploaderID, file.FileURL,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return mapCourseWriteError(err, "failed to add course file")
	}
	return nil
}

// AddLecturer inserts the lecturer into the course's lecturer set
func (r *CourseRepository) AddLecturer(ctx context.Context, courseID, lecturerID int64) error {
	tag, err := r.DB.Exec(ctx, `
		INSERT INTO course_lecturers (course_id, lecturer_id)
		VALUES ($1, $2)
		ON CONFLICT (course_id, lecturer_id) DO NOTHING`,
		courseID, lecturerID)
	if err != nil {
		return mapCourseWriteError(err, "failed to assign lecturer")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyAssigned
	}
	return nil
}

// RegisterStudent adds the student to the course and the course to the
// student's list in one transaction. The primary keys on both tables make
// a concurrent duplicate registration fail instead of double-inserting.
func (r *CourseRepository) RegisterStudent(ctx context.Context, courseID, studentID int64) error {
	return db.WithTransaction(ctx, r.DB, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO course_students (course_id, student_id)
			VALUES ($1, $2)
			ON CONFLICT (course_id, student_id) DO NOTHING`,
			courseID, studentID)
		if err != nil {
			return mapCourseWriteError(err, "failed to add course student")
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrAlreadyRegistered
		}

		tag, err = tx.Exec(ctx, `
			INSERT INTO user_courses (user_id, course_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, course_id) DO NOTHING`,
			studentID, courseID)
		if err != nil {
			return mapCourseWriteError(err, "failed to add user course")
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrAlreadyRegistered
		}
		return nil
	})
}

// AddAssignment appends an assignment with an empty submission list
func (r *CourseRepository) AddAssignment(ctx context.Context, assignment *models.Assignment) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO assignments (course_id, title, file_url, lecturer_id, deadline)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		assignment.CourseID, assignment.Title, assignment.FileURL, assignment.LecturerID, assignment.Deadline,
	).Scan(&assignment.ID, &assignment.CreatedAt)
	if err != nil {
		return mapCourseWriteError(err, "failed to add assignment")
	}
	assignment.Submissions = []models.Submission{}
	return nil
}

// AddSubmission appends a student submission to an assignment
func (r *CourseRepository) AddSubmission(ctx context.Context, submission *models.Submission) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO assignment_submissions (assignment_id, student_id, file_url)
		VALUES ($1, $2, $3)
		RETURNING id, submitted_at`,
		submission.AssignmentID, submission.StudentID, submission.FileURL,
	).Scan(&submission.ID, &submission.SubmittedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, "assignment_submissions_assignment_id_fkey") {
			return apperrors.ErrAssignmentNotFound
		}
		return mapCourseWriteError(err, "failed to add submission")
	}
	return nil
}

// mapCourseWriteError turns foreign key violations into not-found errors
func mapCourseWriteError(err error, msg string) error {
	switch {
	case dberrors.IsForeignKeyViolation(err, "course_files_course_id_fkey"),
		dberrors.IsForeignKeyViolation(err, "assignments_course_id_fkey"),
		dberrors.IsForeignKeyViolation(err, "course_lecturers_course_id_fkey"),
		dberrors.IsForeignKeyViolation(err, "course_students_course_id_fkey"),
		dberrors.IsForeignKeyViolation(err, "user_courses_course_id_fkey"):
		return apperrors.ErrCourseNotFound
	case dberrors.IsForeignKeyViolation(err, ""):
		return apperrors.ErrUserNotFound
	}
	logger.Error().Err(err).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}
