package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/filestorage"
)

// fakeUserRepo is an in-memory IUserRepository
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]*models.User{}}
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Courses = slices.Clone(u.Courses)
	if cp.Courses == nil {
		cp.Courses = []int64{}
	}
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(user.Email) {
			return 0, apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	r.users[user.ID] = cloneUser(user)
	return user.ID, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []int64) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(_ context.Context, role *models.RoleType) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.User{}
	for id := int64(1); id < r.nextID; id++ {
		u, ok := r.users[id]
		if !ok || (role != nil && u.Role != *role) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
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

func (r *fakeUserRepo) SaveCredentials(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	stored.PasswordHash = user.PasswordHash
	stored.ResetCode = user.ResetCode
	stored.ResetCodeExpiresAt = user.ResetCodeExpiresAt
	stored.ResetCodeVerified = user.ResetCodeVerified
	return nil
}

func (r *fakeUserRepo) mustAdd(user *models.User) *models.User {
	if _, err := r.Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

// fakeCourseRepo is an in-memory ICourseRepository that keeps the user side
// of registrations in the paired fakeUserRepo.
type fakeCourseRepo struct {
	mu      sync.Mutex
	nextID  int64
	courses map[int64]*models.Course
	users   *fakeUserRepo
}

func newFakeCourseRepo(users *fakeUserRepo) *fakeCourseRepo {
	return &fakeCourseRepo{nextID: 1, courses: map[int64]*models.Course{}, users: users}
}

func cloneCourse(c *models.Course) *models.Course {
	cp := *c
	cp.LecturerIDs = slices.Clone(c.LecturerIDs)
	cp.StudentIDs = slices.Clone(c.StudentIDs)
	cp.Files = slices.Clone(c.Files)
	cp.Assignments = make([]models.Assignment, len(c.Assignments))
	for i, a := range c.Assignments {
		a.Submissions = slices.Clone(a.Submissions)
		cp.Assignments[i] = a
	}
	return &cp
}

func (r *fakeCourseRepo) Create(_ context.Context, course *models.Course) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course.ID = r.nextID
	r.nextID++
	course.LecturerIDs = []int64{}
	course.StudentIDs = []int64{}
	course.Files = []models.CourseFile{}
	course.Assignments = []models.Assignment{}
	r.courses[course.ID] = cloneCourse(course)
	return course.ID, nil
}

func (r *fakeCourseRepo) FindByID(_ context.Context, id int64) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

func (r *fakeCourseRepo) filter(keep func(*models.Course) bool) []*models.Course {
	out := []*models.Course{}
	for id := int64(1); id < r.nextID; id++ {
		if c, ok := r.courses[id]; ok && keep(c) {
			out = append(out, cloneCourse(c))
		}
	}
	return out
}

func (r *fakeCourseRepo) List(_ context.Context) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(*models.Course) bool { return true }), nil
}

func (r *fakeCourseRepo) ListByLecturer(_ context.Context, lecturerID int64) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(c *models.Course) bool { return c.HasLecturer(lecturerID) }), nil
}

func (r *fakeCourseRepo) ListByStudent(ctx context.Context, studentID int64) ([]*models.Course, error) {
	user, err := r.users.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Course{}
	for _, id := range user.Courses {
		if c, ok := r.courses[id]; ok {
			out = append(out, cloneCourse(c))
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.courses[id]
	return ok, nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) AddFile(_ context.Context, file *models.CourseFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[file.CourseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	file.ID = int64(len(c.Files) + 1)
	file.CreatedAt = time.Now()
	c.Files = append(c.Files, *file)
	return nil
}

func (r *fakeCourseRepo) AddLecturer(ctx context.Context, courseID, lecturerID int64) error {
	if _, err := r.users.FindByID(ctx, lecturerID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if c.HasLecturer(lecturerID) {
		return apperrors.ErrAlreadyAssigned
	}
	c.LecturerIDs = append(c.LecturerIDs, lecturerID)
	return nil
}

func (r *fakeCourseRepo) RegisterStudent(_ context.Context, courseID, studentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users.mu.Lock()
	defer r.users.mu.Unlock()

	c, ok := r.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	u, ok := r.users.users[studentID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if c.HasStudent(studentID) || slices.Contains(u.Courses, courseID) {
		return apperrors.ErrAlreadyRegistered
	}
	c.StudentIDs = append(c.StudentIDs, studentID)
	u.Courses = append(u.Courses, courseID)
	return nil
}

func (r *fakeCourseRepo) AddAssignment(_ context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[assignment.CourseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	assignment.ID = int64(100*assignment.CourseID) + int64(len(c.Assignments)+1)
	assignment.CreatedAt = time.Now()
	assignment.Submissions = []models.Submission{}
	c.Assignments = append(c.Assignments, *assignment)
	return nil
}

func (r *fakeCourseRepo) AddSubmission(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if a := c.FindAssignment(submission.AssignmentID); a != nil {
			submission.ID = int64(len(a.Submissions) + 1)
			submission.SubmittedAt = time.Now()
			a.Submissions = append(a.Submissions, *submission)
			return nil
		}
	}
	return apperrors.ErrAssignmentNotFound
}

// fakeStorage records uploads and returns predictable URLs
type fakeStorage struct {
	uploads []filestorage.File
	err     error
}

func (s *fakeStorage) Upload(_ context.Context, file filestorage.File) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads = append(s.uploads, file)
	return "https://cdn.example.com/" + file.Folder + "/" + file.Name, nil
}

// fakeMailer records reset codes per recipient
type fakeMailer struct {
	codes map[string]string
	err   error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: map[string]string{}}
}

func (m *fakeMailer) SendMail(_ context.Context, _, _, _ string) error {
	return m.err
}

func (m *fakeMailer) SendPasswordResetCode(_ context.Context, toEmail, _, code string) error {
	if m.err != nil {
		return m.err
	}
	m.codes[toEmail] = code
	return nil
}

var errTransport = errors.New("transport unavailable")
