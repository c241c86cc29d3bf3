package models

import (
	"slices"
	"strings"
	"time"
)

// Course is a course document with its membership lists and embedded entries
type Course struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"course_title" db:"title"`
	Description string    `json:"course_description" db:"description"`
	Code        string    `json:"course_code" db:"code"`
	Image       string    `json:"image" db:"image"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated by the repository)
	LecturerIDs []int64      `json:"lecturers"`
	StudentIDs  []int64      `json:"students"`
	Files       []CourseFile `json:"course_files"`
	Assignments []Assignment `json:"assignments"`
}

// CourseFile is an uploaded course material
type CourseFile struct {
	ID         int64     `json:"id" db:"id"`
	CourseID   int64     `json:"-" db:"course_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	UploaderID int64     `json:"user" db:"uploader_id"`
	FileURL    string    `json:"file" db:"file_url"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Assignment is a lecturer-issued task with its student submissions
type Assignment struct {
	ID          int64        `json:"id" db:"id"`
	CourseID    int64        `json:"-" db:"course_id"`
	Title       string       `json:"title" db:"title"`
	FileURL     string       `json:"file" db:"file_url"`
	LecturerID  int64        `json:"lecturer" db:"lecturer_id"`
	Deadline    time.Time    `json:"deadline" db:"deadline"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	Submissions []Submission `json:"student_submissions"`
}

// Submission is a student's upload against an assignment
type Submission struct {
	ID           int64     `json:"id" db:"id"`
	AssignmentID int64     `json:"-" db:"assignment_id"`
	StudentID    int64     `json:"student" db:"student_id"`
	FileURL      string    `json:"submission_file" db:"file_url"`
	SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"`
}

// NormalizeDescription turns newlines into HTML line breaks
func NormalizeDescription(description string) string {
	description = strings.ReplaceAll(description, "\r\n", "\n")
	return strings.ReplaceAll(description, "\n", "<br/>")
}

// HasLecturer reports whether lecturerID is in the lecturer set
func (c *Course) HasLecturer(lecturerID int64) bool {
	return slices.Contains(c.LecturerIDs, lecturerID)
}

// HasStudent reports whether studentID is in the student set
func (c *Course) HasStudent(studentID int64) bool {
	return slices.Contains(c.StudentIDs, studentID)
}

// FindAssignment returns the assignment with the given id, or nil
func (c *Course) FindAssignment(assignmentID int64) *Assignment {
	for i := range c.Assignments {
		if c.Assignments[i].ID == assignmentID {
			return &c.Assignments[i]
		}
	}
	return nil
}
