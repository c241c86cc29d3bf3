package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/edutech/internal/app/controllers"
	"github.com/yigit/edutech/internal/app/models/dto"
	"github.com/yigit/edutech/internal/middleware"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	courseController *controllers.CourseController,
	authMiddleware *middleware.AuthMiddleware,
	database Pinger,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", healthHandler(database))

	// --- Bootstrap auth routes (public) ---
	auth := v1.Group("/auth")
	{
		auth.POST("/sign-up", authController.SignUp)
		auth.POST("/sign-in", authController.SignIn)
		auth.GET("/auth-status", authController.AuthStatus)
		auth.POST("/sign-out", authController.SignOut)
	}

	// --- User routes ---
	user := v1.Group("/user")
	{
		user.POST("/register", userController.Register)
		user.POST("/login", userController.Login)
		user.GET("/logout", userController.Logout)
		user.GET("/loggedin", userController.LoggedIn)
		user.POST("/forgotpassword/:email", userController.ForgotPassword)
		user.POST("/resetemailsent/:email", userController.ResetEmailSent)
		user.PUT("/resetpassword/:email", userController.ResetPassword)

		userProtected := user.Group("")
		userProtected.Use(authMiddleware.CookieAuth())
		{
			userProtected.GET("/getuser", userController.GetUser)
			userProtected.GET("/getusers", userController.GetUsers)
			userProtected.GET("/getlecturers", userController.GetLecturers)
			userProtected.PATCH("/updateuser", userController.UpdateUser)
			userProtected.PATCH("/changepassword", userController.ChangePassword)
		}
	}

	// --- Course routes (all authenticated) ---
	course := v1.Group("/course")
	course.Use(authMiddleware.CookieAuth())
	{
		course.POST("/newcourse", courseController.CreateCourse)
		course.GET("/allcourses", courseController.GetAllCourses)
		course.GET("/studentcourses", courseController.GetStudentCourses)
		course.GET("/lecturerscourses", courseController.GetLecturerCourses)
		course.POST("/uploadcoursematerial/:id", courseController.UploadCourseMaterial)
		course.POST("/addassignment/:courseId", courseController.AddAssignment)
		course.POST("/assignlecturer/:courseId/:lecturerId", courseController.AssignLecturer)
		course.POST("/registercourse/:courseId", courseController.RegisterCourse)
		course.POST("/submitassignment/:courseId/:assignmentId", courseController.SubmitAssignment)
		course.GET("/:id", courseController.GetCourse)
		course.DELETE("/:id", courseController.DeleteCourse)
	}
}

func healthHandler(database Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if database != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := database.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
					dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Database unavailable")))
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
