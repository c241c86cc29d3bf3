package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/app/models/dto"
	"github.com/yigit/edutech/internal/app/repositories"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/filestorage"
)

// deadlineLayouts are tried in order when parsing an assignment deadline
var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// CourseService implements the course registry operations
type CourseService struct {
	courseRepo  repositories.ICourseRepository
	userRepo    repositories.IUserRepository
	fileStorage filestorage.FileStorage
	logger      zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(
	courseRepo repositories.ICourseRepository,
	userRepo repositories.IUserRepository,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) *CourseService {
	return &CourseService{
		courseRepo:  courseRepo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func courseNotFound() error {
	return apperrors.NewCustomError(apperrors.ErrCourseNotFound, "Course not found")
}

// findCourse loads a course, translating a miss into a not-found error
func (s *CourseService) findCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, courseNotFound()
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) upload(ctx context.Context, file *filestorage.File, folder string) (string, error) {
	file.Folder = folder
	url, err := s.fileStorage.Upload(ctx, *file)
	if err != nil {
		if errors.Is(err, filestorage.ErrEmptyFile) {
			return "", apperrors.NewValidationError("Uploaded file is empty")
		}
		s.logger.Error().Err(err).Str("folder", folder).Msg("File upload failed")
		return "", apperrors.NewUploadError(err)
	}
	return url, nil
}

// CreateCourse validates and stores a new course. The image is optional; a
// placeholder is used without one.
func (s *CourseService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest, image *filestorage.File) (*dto.CourseResponse, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	code := strings.TrimSpace(req.Code)
	if title == "" || description == "" || code == "" {
		return nil, apperrors.NewValidationError("Please fill in all fields")
	}

	course := &models.Course{
		Title:       title,
		Description: models.NormalizeDescription(description),
		Code:        code,
		Image:       models.DefaultCourseImage,
	}

	if image != nil {
		url, err := s.upload(ctx, image, filestorage.FolderCourseImages)
		if err != nil {
			return nil, err
		}
		course.Image = url
	}

	if _, err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("course creation error: %w", err)
	}

	s.logger.Info().Int64("courseID", course.ID).Str("code", course.Code).Msg("Course created")
	response := dto.NewCourseResponse(course)
	return &response, nil
}

// GetCourse returns a course with its lecturers resolved
func (s *CourseService) GetCourse(ctx context.Context, courseID int64) (*dto.CourseDetailResponse, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	lecturers, err := s.lecturerDirectory(ctx, []*models.Course{course})
	if err != nil {
		return nil, err
	}
	response := dto.NewCourseDetailResponse(course, lecturers)
	return &response, nil
}

// ListCourses returns every course
func (s *CourseService) ListCourses(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponses(courses), nil
}

// DeleteCourse removes a course with its files, assignments and memberships
func (s *CourseService) DeleteCourse(ctx context.Context, courseID int64) error {
	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return courseNotFound()
		}
		return err
	}
	s.logger.Info().Int64("courseID", courseID).Msg("Course deleted")
	return nil
}

// AddCourseFile uploads a course material and appends it to the course
func (s *CourseService) AddCourseFile(ctx context.Context, courseID, uploaderID int64, fileName string, file *filestorage.File) (*dto.CourseResponse, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, apperrors.NewValidationError("Please enter the name of the material")
	}
	if file == nil {
		return nil, apperrors.NewValidationError("Please attach the material file")
	}

	exists, err := s.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, courseNotFound()
	}

	url, err := s.upload(ctx, file, filestorage.FolderCourseMaterials)
	if err != nil {
		return nil, err
	}

	// A failed write after this point leaves the uploaded object behind.
	entry := &models.CourseFile{
		CourseID:   courseID,
		FileName:   fileName,
		UploaderID: uploaderID,
		FileURL:    url,
	}
	if err := s.courseRepo.AddFile(ctx, entry); err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, courseNotFound()
		}
		return nil, err
	}

	return s.courseResponse(ctx, courseID)
}

// AssignLecturer adds lecturerID to the course's lecturer set
func (s *CourseService) AssignLecturer(ctx context.Context, courseID, lecturerID int64) (*dto.CourseResponse, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.HasLecturer(lecturerID) {
		return nil, apperrors.NewCustomError(apperrors.ErrAlreadyAssigned, "Lecturer is already assigned to this course")
	}

	if err := s.courseRepo.AddLecturer(ctx, courseID, lecturerID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadyAssigned):
			return nil, apperrors.NewCustomError(err, "Lecturer is already assigned to this course")
		case errors.Is(err, apperrors.ErrCourseNotFound):
			return nil, courseNotFound()
		case errors.Is(err, apperrors.ErrUserNotFound):
			return nil, apperrors.NewCustomError(err, "Lecturer not found")
		}
		return nil, err
	}

	s.logger.Info().Int64("courseID", courseID).Int64("lecturerID", lecturerID).Msg("Lecturer assigned")
	return s.courseResponse(ctx, courseID)
}

// RegisterStudent adds the student to the course and the course to the
// student's list as one atomic change.
func (s *CourseService) RegisterStudent(ctx context.Context, courseID, studentID int64) error {
	if err := s.courseRepo.RegisterStudent(ctx, courseID, studentID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadyRegistered):
			return apperrors.NewCustomError(apperrors.ErrAlreadyRegistered, "You are already registered for this course")
		case errors.Is(err, apperrors.ErrCourseNotFound):
			return courseNotFound()
		}
		return err
	}

	s.logger.Info().Int64("courseID", courseID).Int64("studentID", studentID).Msg("Student registered")
	return nil
}

// ListRegisteredCourses returns the student's courses in registration order
func (s *CourseService) ListRegisteredCourses(ctx context.Context, studentID int64) ([]dto.RegisteredCourseResponse, error) {
	courses, err := s.courseRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.RegisteredCourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, dto.NewRegisteredCourseResponse(c))
	}
	return out, nil
}

// ListLecturerCourses returns the courses lecturerID teaches. Having none is
// reported as not found.
func (s *CourseService) ListLecturerCourses(ctx context.Context, lecturerID int64) ([]dto.CourseDetailResponse, error) {
	courses, err := s.courseRepo.ListByLecturer(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, apperrors.NewResourceNotFoundError("No courses found for this lecturer")
	}

	lecturers, err := s.lecturerDirectory(ctx, courses)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CourseDetailResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, dto.NewCourseDetailResponse(c, lecturers))
	}
	return out, nil
}

// AddAssignment appends an assignment with an optional attached file
func (s *CourseService) AddAssignment(ctx context.Context, courseID, lecturerID int64, req *dto.AddAssignmentRequest, file *filestorage.File) (*dto.CourseResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("Please enter the assignment title")
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	exists, err := s.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, courseNotFound()
	}

	assignment := &models.Assignment{
		CourseID:   courseID,
		Title:      title,
		LecturerID: lecturerID,
		Deadline:   deadline,
	}
	if file != nil {
		url, err := s.upload(ctx, file, filestorage.FolderAssignments)
		if err != nil {
			return nil, err
		}
		assignment.FileURL = url
	}

	if err := s.courseRepo.AddAssignment(ctx, assignment); err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, courseNotFound()
		}
		return nil, err
	}

	s.logger.Info().Int64("courseID", courseID).Int64("assignmentID", assignment.ID).Msg("Assignment added")
	return s.courseResponse(ctx, courseID)
}

// SubmitAssignment stores a registered student's submission for an assignment
func (s *CourseService) SubmitAssignment(ctx context.Context, courseID, assignmentID, studentID int64, file *filestorage.File) (*models.Submission, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("Please attach the submission file")
	}

	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.HasStudent(studentID) {
		return nil, apperrors.NewForbiddenError("You are not registered for this course")
	}
	if course.FindAssignment(assignmentID) == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrAssignmentNotFound, "Assignment not found")
	}

	url, err := s.upload(ctx, file, filestorage.FolderSubmissions)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		FileURL:      url,
	}
	if err := s.courseRepo.AddSubmission(ctx, submission); err != nil {
		if errors.Is(err, apperrors.ErrAssignmentNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrAssignmentNotFound, "Assignment not found")
		}
		return nil, err
	}
	return submission, nil
}

func (s *CourseService) courseResponse(ctx context.Context, courseID int64) (*dto.CourseResponse, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	response := dto.NewCourseResponse(course)
	return &response, nil
}

// lecturerDirectory loads every lecturer referenced by courses, keyed by id
func (s *CourseService) lecturerDirectory(ctx context.Context, courses []*models.Course) (map[int64]*models.User, error) {
	seen := map[int64]struct{}{}
	ids := []int64{}
	for _, c := range courses {
		for _, id := range c.LecturerIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading lecturers: %w", err)
	}
	byID := make(map[int64]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func parseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperrors.NewValidationError("Please enter the assignment deadline")
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewValidationError("Deadline must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}
