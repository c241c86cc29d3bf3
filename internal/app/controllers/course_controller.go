package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/edutech/internal/app/models/dto"
	"github.com/yigit/edutech/internal/app/services"
	"github.com/yigit/edutech/internal/middleware"
	"github.com/yigit/edutech/internal/pkg/apperrors"
)

// CourseController handles course registry operations. Every route sits
// behind the cookie guard.
type CourseController struct {
	courseService  *services.CourseService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService, maxUploadBytes int64, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService:  courseService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// CreateCourse handles the new-course form
// @Summary Create a course
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Param course_title formData string true "Title"
// @Param course_description formData string true "Description"
// @Param course_code formData string true "Code"
// @Param image formData file false "Cover image"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing fields"
// @Router /course/newcourse [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	image, err := readFormFile(ctx, "image", c.maxUploadBytes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.courseService.CreateCourse(ctx.Request.Context(), &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(course, "Course created successfully"))
}

// GetAllCourses lists every course
// @Summary List courses
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse}
// @Router /course/allcourses [get]
func (c *CourseController) GetAllCourses(ctx *gin.Context) {
	courses, err := c.courseService.ListCourses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(courses, ""))
}

// GetStudentCourses lists the caller's registered courses
// @Summary Registered courses
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.RegisteredCourseResponse}
// @Router /course/studentcourses [get]
func (c *CourseController) GetStudentCourses(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	courses, err := c.courseService.ListRegisteredCourses(ctx.Request.Context(), user.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(courses, ""))
}

// GetLecturerCourses lists the courses the caller teaches
// @Summary Lecturer courses
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "No courses found"
// @Router /course/lecturerscourses [get]
func (c *CourseController) GetLecturerCourses(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}

	courses, err := c.courseService.ListLecturerCourses(ctx.Request.Context(), user.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(courses, ""))
}

// GetCourse returns one course with its lecturers resolved
// @Summary Get a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseDetailResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /course/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.courseService.GetCourse(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, ""))
}

// DeleteCourse removes a course
// @Summary Delete a course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /course/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	courseID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.courseService.DeleteCourse(ctx.Request.Context(), courseID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Course deleted successfully"})
}

// UploadCourseMaterial attaches a named file to a course
// @Summary Upload course material
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Course ID"
// @Param file_name formData string true "Display name"
// @Param file formData file true "Material"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /course/uploadcoursematerial/{id} [post]
func (c *CourseController) UploadCourseMaterial(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	courseID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.AddCourseFileRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}
	file, err := readFormFile(ctx, "file", c.maxUploadBytes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.courseService.AddCourseFile(ctx.Request.Context(), courseID, user.ID, req.FileName, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "File uploaded successfully"))
}

// AddAssignment adds an assignment to a course
// @Summary Add an assignment
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Param courseId path int true "Course ID"
// @Param title formData string true "Title"
// @Param deadline formData string true "Deadline (RFC3339 or YYYY-MM-DD)"
// @Param file formData file false "Attachment"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse}
// @Router /course/addassignment/{courseId} [post]
func (c *CourseController) AddAssignment(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	courseID, err := parseIDParam(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.AddAssignmentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}
	file, err := readFormFile(ctx, "file", c.maxUploadBytes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.courseService.AddAssignment(ctx.Request.Context(), courseID, user.ID, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "Assignment added successfully"))
}

// AssignLecturer adds a lecturer to a course
// @Summary Assign a lecturer
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Param lecturerId path int true "Lecturer user ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 400 {object} dto.ErrorResponse "Already assigned"
// @Failure 404 {object} dto.ErrorResponse
// @Router /course/assignlecturer/{courseId}/{lecturerId} [post]
func (c *CourseController) AssignLecturer(ctx *gin.Context) {
	courseID, err := parseIDParam(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	lecturerID, err := parseIDParam(ctx, "lecturerId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.courseService.AssignLecturer(ctx.Request.Context(), courseID, lecturerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "Lecturer assigned successfully"))
}

// RegisterCourse registers the caller as a student of the course
// @Summary Register for a course
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse "Already registered"
// @Failure 404 {object} dto.ErrorResponse
// @Router /course/registercourse/{courseId} [post]
func (c *CourseController) RegisterCourse(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	courseID, err := parseIDParam(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.courseService.RegisterStudent(ctx.Request.Context(), courseID, user.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Course registered successfully"})
}

// SubmitAssignment stores the caller's submission for an assignment
// @Summary Submit an assignment
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Param courseId path int true "Course ID"
// @Param assignmentId path int true "Assignment ID"
// @Param file formData file true "Submission"
// @Success 201 {object} dto.APIResponse{data=models.Submission}
// @Failure 403 {object} dto.ErrorResponse "Not registered for the course"
// @Failure 404 {object} dto.ErrorResponse
// @Router /course/submitassignment/{courseId}/{assignmentId} [post]
func (c *CourseController) SubmitAssignment(ctx *gin.Context) {
	user, ok := requireUser(ctx)
	if !ok {
		return
	}
	courseID, err := parseIDParam(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	assignmentID, err := parseIDParam(ctx, "assignmentId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	file, err := readFormFile(ctx, "file", c.maxUploadBytes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if file == nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("Please attach the submission file"))
		return
	}

	submission, err := c.courseService.SubmitAssignment(ctx.Request.Context(), courseID, assignmentID, user.ID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Int64("courseID", courseID).Int64("assignmentID", assignmentID).Int64("studentID", user.ID).Msg("Assignment submitted")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(submission, "Assignment submitted successfully"))
}
