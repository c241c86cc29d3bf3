package controllers_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/filestorage"
)

// memStore backs both in-memory repositories so registrations touch the
// user and the course under one lock.
type memStore struct {
	mu           sync.Mutex
	users        map[int64]*models.User
	courses      map[int64]*models.Course
	nextUserID   int64
	nextCourseID int64
	nextEntryID  int64
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int64]*models.User{},
		courses: map[int64]*models.Course{},
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Courses = slices.Clone(u.Courses)
	return &c
}

func cloneCourse(c *models.Course) *models.Course {
	out := *c
	out.LecturerIDs = slices.Clone(c.LecturerIDs)
	out.StudentIDs = slices.Clone(c.StudentIDs)
	out.Files = slices.Clone(c.Files)
	out.Assignments = make([]models.Assignment, len(c.Assignments))
	for i, a := range c.Assignments {
		a.Submissions = slices.Clone(a.Submissions)
		out.Assignments[i] = a
	}
	return &out
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, user *models.User) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == strings.ToLower(user.Email) {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = cloneUser(user)
	return user.ID, nil
}

func (r memUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r memUserRepo) FindByIDs(_ context.Context, ids []int64) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r memUserRepo) List(_ context.Context, role *models.RoleType) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.User
	for id := int64(1); id <= r.s.nextUserID; id++ {
		u, ok := r.s.users[id]
		if !ok || (role != nil && u.Role != *role) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r memUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	stored.Fullname = user.Fullname
	stored.Photo = user.Photo
	stored.Title = user.Title
	stored.Semester = user.Semester
	stored.Department = user.Department
	stored.DOB = user.DOB
	return nil
}

func (r memUserRepo) SaveCredentials(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	stored.PasswordHash = user.PasswordHash
	stored.ResetCode = user.ResetCode
	stored.ResetCodeExpiresAt = user.ResetCodeExpiresAt
	stored.ResetCodeVerified = user.ResetCodeVerified
	return nil
}

type memCourseRepo struct{ s *memStore }

func (r memCourseRepo) Create(_ context.Context, course *models.Course) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextCourseID++
	course.ID = r.s.nextCourseID
	course.CreatedAt = time.Now()
	course.UpdatedAt = course.CreatedAt
	r.s.courses[course.ID] = cloneCourse(course)
	return course.ID, nil
}

func (r memCourseRepo) FindByID(_ context.Context, id int64) (*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.courses[id]; ok {
		return cloneCourse(c), nil
	}
	return nil, apperrors.ErrCourseNotFound
}

func (r memCourseRepo) filter(keep func(*models.Course) bool) []*models.Course {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Course
	for id := int64(1); id <= r.s.nextCourseID; id++ {
		if c, ok := r.s.courses[id]; ok && keep(c) {
			out = append(out, cloneCourse(c))
		}
	}
	return out
}

func (r memCourseRepo) List(context.Context) ([]*models.Course, error) {
	return r.filter(func(*models.Course) bool { return true }), nil
}

func (r memCourseRepo) ListByLecturer(_ context.Context, lecturerID int64) ([]*models.Course, error) {
	return r.filter(func(c *models.Course) bool { return c.HasLecturer(lecturerID) }), nil
}

func (r memCourseRepo) ListByStudent(_ context.Context, studentID int64) ([]*models.Course, error) {
	r.s.mu.Lock()
	user, ok := r.s.users[studentID]
	var order []int64
	if ok {
		order = slices.Clone(user.Courses)
	}
	r.s.mu.Unlock()

	var out []*models.Course
	for _, id := range order {
		if c, err := r.FindByID(context.Background(), id); err == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCourseRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.courses[id]
	return ok, nil
}

func (r memCourseRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.s.courses, id)
	for _, u := range r.s.users {
		u.Courses = slices.DeleteFunc(u.Courses, func(c int64) bool { return c == id })
	}
	return nil
}

func (r memCourseRepo) AddFile(_ context.Context, file *models.CourseFile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[file.CourseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	r.s.nextEntryID++
	file.ID = r.s.nextEntryID
	file.CreatedAt = time.Now()
	c.Files = append(c.Files, *file)
	return nil
}

func (r memCourseRepo) AddLecturer(_ context.Context, courseID, lecturerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if _, ok := r.s.users[lecturerID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if c.HasLecturer(lecturerID) {
		return apperrors.ErrAlreadyAssigned
	}
	c.LecturerIDs = append(c.LecturerIDs, lecturerID)
	return nil
}

func (r memCourseRepo) RegisterStudent(_ context.Context, courseID, studentID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	u, ok := r.s.users[studentID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if c.HasStudent(studentID) {
		return apperrors.ErrAlreadyRegistered
	}
	c.StudentIDs = append(c.StudentIDs, studentID)
	u.Courses = append(u.Courses, courseID)
	return nil
}

func (r memCourseRepo) AddAssignment(_ context.Context, assignment *models.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[assignment.CourseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	r.s.nextEntryID++
	assignment.ID = r.s.nextEntryID
	assignment.CreatedAt = time.Now()
	c.Assignments = append(c.Assignments, *assignment)
	return nil
}

func (r memCourseRepo) AddSubmission(_ context.Context, submission *models.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.courses {
		for i := range c.Assignments {
			if c.Assignments[i].ID == submission.AssignmentID {
				r.s.nextEntryID++
				submission.ID = r.s.nextEntryID
				submission.SubmittedAt = time.Now()
				c.Assignments[i].Submissions = append(c.Assignments[i].Submissions, *submission)
				return nil
			}
		}
	}
	return apperrors.ErrAssignmentNotFound
}

type stubStorage struct {
	mu      sync.Mutex
	uploads []filestorage.File
}

func (s *stubStorage) Upload(_ context.Context, file filestorage.File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, file)
	return "https://files.example.com/" + file.Folder + "/" + file.Name, nil
}

type stubMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *stubMailer) SendMail(context.Context, string, string, string) error { return nil }

func (m *stubMailer) SendPasswordResetCode(_ context.Context, toEmail, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[toEmail] = code
	return nil
}

func (m *stubMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}
