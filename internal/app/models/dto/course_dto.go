package dto

import (
	"time"

	"github.com/yigit/edutech/internal/app/models"
)

// CreateCourseRequest is bound from the multipart new-course form
type CreateCourseRequest struct {
	Title       string `form:"course_title"`
	Description string `form:"course_description"`
	Code        string `form:"course_code"`
}

// AddCourseFileRequest is bound from the course material upload form
type AddCourseFileRequest struct {
	FileName string `form:"file_name"`
}

// AddAssignmentRequest is bound from the assignment form. Deadline accepts
// RFC3339 or a plain date.
type AddAssignmentRequest struct {
	Title    string `form:"title"`
	Deadline string `form:"deadline"`
}

// LecturerProjection is the reduced lecturer view embedded in course details
type LecturerProjection struct {
	ID       int64  `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}

// CourseSummary holds the fields every course projection shares
type CourseSummary struct {
	ID          int64               `json:"id"`
	Title       string              `json:"course_title"`
	Description string              `json:"course_description"`
	Code        string              `json:"course_code"`
	Image       string              `json:"image"`
	Files       []models.CourseFile `json:"course_files"`
	Assignments []models.Assignment `json:"assignments"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// CourseResponse exposes membership as raw identifiers
type CourseResponse struct {
	CourseSummary
	Lecturers []int64 `json:"lecturers"`
	Students  []int64 `json:"students"`
}

// CourseDetailResponse resolves lecturers to name/email projections
type CourseDetailResponse struct {
	CourseSummary
	Lecturers []LecturerProjection `json:"lecturers"`
	Students  []int64              `json:"students"`
}

// RegisteredCourseResponse is a student's view of a course; the student
// membership list is left out.
type RegisteredCourseResponse struct {
	CourseSummary
	Lecturers []int64 `json:"lecturers"`
}

func newCourseSummary(c *models.Course) CourseSummary {
	files := c.Files
	if files == nil {
		files = []models.CourseFile{}
	}
	assignments := c.Assignments
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	for i := range assignments {
		if assignments[i].Submissions == nil {
			assignments[i].Submissions = []models.Submission{}
		}
	}
	return CourseSummary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Code:        c.Code,
		Image:       c.Image,
		Files:       files,
		Assignments: assignments,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func idsOrEmpty(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// NewCourseResponse builds the identifier-only projection
func NewCourseResponse(c *models.Course) CourseResponse {
	return CourseResponse{
		CourseSummary: newCourseSummary(c),
		Lecturers:     idsOrEmpty(c.LecturerIDs),
		Students:      idsOrEmpty(c.StudentIDs),
	}
}

// NewCourseResponses projects a list of courses
func NewCourseResponses(courses []*models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseResponse(c))
	}
	return out
}

// NewCourseDetailResponse builds the detail projection. lecturers is keyed by
// user id; identifiers missing from it are skipped.
func NewCourseDetailResponse(c *models.Course, lecturers map[int64]*models.User) CourseDetailResponse {
	resolved := make([]LecturerProjection, 0, len(c.LecturerIDs))
	for _, id := range c.LecturerIDs {
		u, ok := lecturers[id]
		if !ok {
			continue
		}
		resolved = append(resolved, LecturerProjection{
			ID:       u.ID,
			Fullname: u.Fullname,
			Email:    u.Email,
			Image:    u.Photo,
		})
	}
	return CourseDetailResponse{
		CourseSummary: newCourseSummary(c),
		Lecturers:     resolved,
		Students:      idsOrEmpty(c.StudentIDs),
	}
}

// NewRegisteredCourseResponse builds the student-facing projection
func NewRegisteredCourseResponse(c *models.Course) RegisteredCourseResponse {
	return RegisteredCourseResponse{
		CourseSummary: newCourseSummary(c),
		Lecturers:     idsOrEmpty(c.LecturerIDs),
	}
}
