package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/edutech/internal/app/controllers"
	"github.com/yigit/edutech/internal/app/routes"
	"github.com/yigit/edutech/internal/app/services"
	"github.com/yigit/edutech/internal/middleware"
	"github.com/yigit/edutech/internal/pkg/auth"
)

// testUploadLimit is the per-file limit the test router enforces
const testUploadLimit = 1 << 10

type testServer struct {
	router  *gin.Engine
	store   *memStore
	storage *stubStorage
	mailer  *stubMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	ts := &testServer{
		store:   newMemStore(),
		storage: &stubStorage{},
		mailer:  &stubMailer{codes: map[string]string{}},
	}
	users := memUserRepo{ts.store}
	courses := memCourseRepo{ts.store}
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "controller-secret", TokenIssuer: "edutech-test"})
	log := zerolog.Nop()

	authService := services.NewAuthService(users, jwtService, ts.mailer, log)
	userService := services.NewUserService(users, ts.storage, log)
	courseService := services.NewCourseService(courses, users, ts.storage, log)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, users, log)

	ts.router = gin.New()
	routes.SetupRouter(ts.router,
		controllers.NewAuthController(authService, authMiddleware, true, log),
		controllers.NewUserController(authService, userService, authMiddleware, true, testUploadLimit, log),
		controllers.NewCourseController(courseService, testUploadLimit, log),
		authMiddleware,
		nil,
	)
	return ts
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// response wraps a recorder with decoding helpers
type response struct {
	*httptest.ResponseRecorder
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &body), r.Body.String())
	return body
}

func (r response) tokenCookie() *http.Cookie {
	for _, c := range r.Result().Cookies() {
		if c.Name == middleware.TokenCookieName {
			return c
		}
	}
	return nil
}

func (ts *testServer) do(t *testing.T, req *http.Request, cookie *http.Cookie) response {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return response{w}
}

func (ts *testServer) doJSON(t *testing.T, method, path string, body any, cookie *http.Cookie) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	return ts.do(t, req, cookie)
}

type formFile struct {
	field, name, contentType string
	data                     []byte
}

func (ts *testServer) doMultipart(t *testing.T, method, path string, fields map[string]string, files []formFile, cookie *http.Cookie) response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.do(t, req, cookie)
}

// register creates an account through the API and returns its cookie and id
func (ts *testServer) register(t *testing.T, fullname, email, role string) (*http.Cookie, int64) {
	t.Helper()
	resp := ts.doJSON(t, http.MethodPost, "/user/register", map[string]string{
		"fullname": fullname, "email": email, "password": "Secret1", "role": role,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	cookie := resp.tokenCookie()
	require.NotNil(t, cookie)
	data := resp.json(t)["data"].(map[string]any)
	user := data["user"].(map[string]any)
	return cookie, int64(user["id"].(float64))
}

func TestAuthBootstrapFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.doJSON(t, http.MethodPost, "/auth/sign-up",
		map[string]string{"fullname": "Ada Lovelace", "email": "Ada@Example.com", "password": "Engine42"}, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, map[string]any{"success": true, "fullname": "Ada Lovelace", "email": "ada@example.com"}, resp.json(t))

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"duplicate email", map[string]string{"fullname": "Ada", "email": "ada@example.com", "password": "Engine42"}, http.StatusBadRequest},
		{"invalid email", map[string]string{"fullname": "Ada", "email": "not-an-email", "password": "Engine42"}, http.StatusForbidden},
		{"weak password", map[string]string{"fullname": "Ada", "email": "new@example.com", "password": "weak"}, http.StatusForbidden},
		{"missing field", map[string]string{"email": "new@example.com"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.doJSON(t, http.MethodPost, "/auth/sign-up", tt.body, nil)
			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.NotEmpty(t, resp.json(t)["message"])
		})
	}

	resp = ts.doJSON(t, http.MethodPost, "/auth/sign-in", map[string]string{"email": "nobody@example.com", "password": "Engine42"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = ts.doJSON(t, http.MethodPost, "/auth/sign-in", map[string]string{"email": "ada@example.com", "password": "Engine43"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.doJSON(t, http.MethodPost, "/auth/sign-in", map[string]string{"email": "ada@example.com", "password": "Engine42"}, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.json(t)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Ada Lovelace", body["fullname"])
	cookie := resp.tokenCookie()
	require.NotNil(t, cookie)
	assert.Equal(t, body["token"], cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)

	resp = ts.doJSON(t, http.MethodGet, "/auth/auth-status", nil, cookie)
	assert.Equal(t, true, resp.json(t)["authenticated"])
	resp = ts.doJSON(t, http.MethodGet, "/auth/auth-status", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, false, resp.json(t)["authenticated"])

	resp = ts.doJSON(t, http.MethodPost, "/auth/sign-out", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.Code)
	cleared := resp.tokenCookie()
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t)
	cookie, userID := ts.register(t, "Grace Hopper", "grace@example.com", "")
	ts.register(t, "Alan Turing", "alan@example.com", "lecturer")

	resp := ts.doJSON(t, http.MethodGet, "/user/loggedin", nil, cookie)
	assert.Equal(t, "true", resp.Body.String())
	resp = ts.doJSON(t, http.MethodGet, "/user/loggedin", nil, nil)
	assert.Equal(t, "false", resp.Body.String())

	resp = ts.doJSON(t, http.MethodGet, "/user/getuser", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Not authorized, please login", resp.json(t)["message"])

	resp = ts.doJSON(t, http.MethodGet, "/user/getuser", nil, cookie)
	require.Equal(t, http.StatusOK, resp.Code)
	user := resp.json(t)["data"].(map[string]any)
	assert.Equal(t, float64(userID), user["id"])
	assert.Equal(t, "student", user["role"])
	assert.NotContains(t, resp.Body.String(), "password")

	resp = ts.doJSON(t, http.MethodGet, "/user/getusers", nil, cookie)
	assert.Len(t, resp.json(t)["data"], 2)
	resp = ts.doJSON(t, http.MethodGet, "/user/getlecturers", nil, cookie)
	lecturers := resp.json(t)["data"].([]any)
	require.Len(t, lecturers, 1)
	assert.Equal(t, "alan@example.com", lecturers[0].(map[string]any)["email"])

	resp = ts.doMultipart(t, http.MethodPatch, "/user/updateuser",
		map[string]string{"title": "Rear Admiral", "semester": "Fall", "department": "Navy", "dob": "1906-12-09"},
		[]formFile{{field: "photo", name: "me.png", contentType: "image/png", data: []byte{0x89, 'P', 'N', 'G'}}},
		cookie)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := resp.json(t)["data"].(map[string]any)
	assert.Equal(t, "Rear Admiral", updated["title"])
	assert.Equal(t, "Grace Hopper", updated["fullname"])
	assert.True(t, strings.HasPrefix(updated["photo"].(string), "https://files.example.com/users/photos/"))

	resp = ts.doJSON(t, http.MethodPatch, "/user/changepassword", map[string]string{"oldPassword": "Wrong1", "password": "Newpass1"}, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	resp = ts.doJSON(t, http.MethodPatch, "/user/changepassword", map[string]string{"oldPassword": "Secret1", "password": "weak"}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	resp = ts.doJSON(t, http.MethodPatch, "/user/changepassword", map[string]string{"oldPassword": "Secret1", "password": "Newpass1"}, cookie)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.doJSON(t, http.MethodPost, "/user/login", map[string]string{"email": "grace@example.com", "password": "Newpass1"}, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotNil(t, resp.tokenCookie())

	resp = ts.doJSON(t, http.MethodGet, "/user/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.tokenCookie().Value)
}

func TestPasswordResetFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Grace Hopper", "grace@example.com", "")

	resp := ts.doJSON(t, http.MethodPut, "/user/resetpassword/grace@example.com", map[string]string{"newPassword": "Longenough1"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code, "reset before verification")

	resp = ts.doJSON(t, http.MethodPost, "/user/forgotpassword/nobody@example.com", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.doJSON(t, http.MethodPost, "/user/forgotpassword/grace@example.com", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	code := ts.mailer.code("grace@example.com")
	require.Len(t, code, 4)

	wrong := "0000"
	if code == wrong {
		wrong = "1111"
	}
	resp = ts.doJSON(t, http.MethodPost, "/user/resetemailsent/grace@example.com", map[string]string{"code": wrong}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.doJSON(t, http.MethodPost, "/user/resetemailsent/grace@example.com", map[string]string{"code": code}, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.doJSON(t, http.MethodPut, "/user/resetpassword/grace@example.com", map[string]string{"newPassword": "short"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.doJSON(t, http.MethodPut, "/user/resetpassword/grace@example.com", map[string]string{"newPassword": "Longenough1"}, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.doJSON(t, http.MethodPost, "/user/login", map[string]string{"email": "grace@example.com", "password": "Longenough1"}, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.doJSON(t, http.MethodPut, "/user/resetpassword/grace@example.com", map[string]string{"newPassword": "Another123"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code, "reset state is cleared after use")
}

func TestCourseEndpoints(t *testing.T) {
	ts := newTestServer(t)
	admin, _ := ts.register(t, "Admin", "admin@example.com", "admin")
	lecturer, lecturerID := ts.register(t, "Alan Turing", "alan@example.com", "lecturer")
	student, studentID := ts.register(t, "Grace Hopper", "grace@example.com", "")

	resp := ts.doJSON(t, http.MethodGet, "/course/allcourses", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.doMultipart(t, http.MethodPost, "/course/newcourse",
		map[string]string{"course_title": "Compilers"}, nil, admin)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Please fill in all fields", resp.json(t)["message"])

	resp = ts.doMultipart(t, http.MethodPost, "/course/newcourse",
		map[string]string{"course_title": "Compilers", "course_description": "Parsing\nCodegen", "course_code": "CS401"},
		[]formFile{{field: "image", name: "cover.jpg", contentType: "image/jpeg", data: []byte("jpeg")}},
		admin)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	course := resp.json(t)["data"].(map[string]any)
	courseID := int64(course["id"].(float64))
	assert.Equal(t, "Parsing<br/>Codegen", course["course_description"])
	assert.True(t, strings.HasPrefix(course["image"].(string), "https://files.example.com/courses/images/"))
	path := "/course/" + itoa(courseID)

	resp = ts.doJSON(t, http.MethodGet, "/course/abc", nil, student)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	resp = ts.doJSON(t, http.MethodGet, "/course/999", nil, student)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.doJSON(t, http.MethodGet, "/course/lecturerscourses", nil, lecturer)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.doJSON(t, http.MethodPost, "/course/assignlecturer/"+itoa(courseID)+"/"+itoa(lecturerID), nil, admin)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = ts.doJSON(t, http.MethodPost, "/course/assignlecturer/"+itoa(courseID)+"/"+itoa(lecturerID), nil, admin)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.doJSON(t, http.MethodGet, path, nil, student)
	require.Equal(t, http.StatusOK, resp.Code)
	detail := resp.json(t)["data"].(map[string]any)
	lecturers := detail["lecturers"].([]any)
	require.Len(t, lecturers, 1)
	assert.Equal(t, "Alan Turing", lecturers[0].(map[string]any)["fullname"])

	resp = ts.doJSON(t, http.MethodGet, "/course/lecturerscourses", nil, lecturer)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.json(t)["data"], 1)

	resp = ts.doMultipart(t, http.MethodPost, "/course/uploadcoursematerial/"+itoa(courseID),
		map[string]string{"file_name": "Week 1"},
		[]formFile{{field: "file", name: "week1.pdf", contentType: "application/pdf", data: []byte("%PDF")}},
		lecturer)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	files := resp.json(t)["data"].(map[string]any)["course_files"].([]any)
	require.Len(t, files, 1)
	assert.Equal(t, "Week 1", files[0].(map[string]any)["file_name"])

	resp = ts.doMultipart(t, http.MethodPost, "/course/uploadcoursematerial/"+itoa(courseID),
		map[string]string{"file_name": "Week 2"}, nil, lecturer)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.doMultipart(t, http.MethodPost, "/course/addassignment/"+itoa(courseID),
		map[string]string{"title": "Lexer", "deadline": "2030-01-15"}, nil, lecturer)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assignments := resp.json(t)["data"].(map[string]any)["assignments"].([]any)
	require.Len(t, assignments, 1)
	assignmentID := int64(assignments[0].(map[string]any)["id"].(float64))
	submitPath := "/course/submitassignment/" + itoa(courseID) + "/" + itoa(assignmentID)
	submission := []formFile{{field: "file", name: "lexer.zip", contentType: "application/zip", data: []byte("PK")}}

	resp = ts.doMultipart(t, http.MethodPost, submitPath, nil, submission, student)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.doJSON(t, http.MethodPost, "/course/registercourse/"+itoa(courseID), nil, student)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = ts.doJSON(t, http.MethodPost, "/course/registercourse/"+itoa(courseID), nil, student)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "You are already registered for this course", resp.json(t)["message"])
	resp = ts.doJSON(t, http.MethodPost, "/course/registercourse/999", nil, student)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.doJSON(t, http.MethodGet, "/course/studentcourses", nil, student)
	require.Equal(t, http.StatusOK, resp.Code)
	registered := resp.json(t)["data"].([]any)
	require.Len(t, registered, 1)
	assert.NotContains(t, registered[0].(map[string]any), "students")

	resp = ts.doMultipart(t, http.MethodPost, submitPath, nil, nil, student)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	resp = ts.doMultipart(t, http.MethodPost, "/course/submitassignment/"+itoa(courseID)+"/999", nil, submission, student)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = ts.doMultipart(t, http.MethodPost, submitPath, nil, submission, student)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, float64(studentID), resp.json(t)["data"].(map[string]any)["student"])

	resp = ts.doJSON(t, http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = ts.doJSON(t, http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUploadLimits(t *testing.T) {
	ts := newTestServer(t)
	lecturer, _ := ts.register(t, "Alan Turing", "alan@example.com", "lecturer")

	resp := ts.doMultipart(t, http.MethodPost, "/course/newcourse",
		map[string]string{"course_title": "Compilers", "course_description": "Parsing", "course_code": "CS401"}, nil, lecturer)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	materialPath := "/course/uploadcoursematerial/" + itoa(int64(resp.json(t)["data"].(map[string]any)["id"].(float64)))
	fields := map[string]string{"file_name": "Week 1"}

	tests := []struct {
		name       string
		path       string
		fields     map[string]string
		file       formFile
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "oversized material",
			path:       materialPath,
			fields:     fields,
			file:       formFile{field: "file", name: "big.pdf", contentType: "application/pdf", data: bytes.Repeat([]byte("x"), testUploadLimit+1)},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Uploaded file exceeds the 1024 byte limit",
		},
		{
			name:       "empty material",
			path:       materialPath,
			fields:     fields,
			file:       formFile{field: "file", name: "empty.pdf", contentType: "application/pdf"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Uploaded file is empty",
		},
		{
			name:       "empty profile photo",
			path:       "/user/updateuser",
			file:       formFile{field: "photo", name: "me.png", contentType: "image/png"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Uploaded photo is empty",
		},
		{
			name:       "material at the limit",
			path:       materialPath,
			fields:     fields,
			file:       formFile{field: "file", name: "fits.pdf", contentType: "application/pdf", data: bytes.Repeat([]byte("x"), testUploadLimit)},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPost
			if tt.path == "/user/updateuser" {
				method = http.MethodPatch
			}
			before := len(ts.storage.uploads)

			resp := ts.doMultipart(t, method, tt.path, tt.fields, []formFile{tt.file}, lecturer)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.json(t)["message"])
				assert.Len(t, ts.storage.uploads, before, "rejected files never reach storage")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.doJSON(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.json(t)["status"])
}
