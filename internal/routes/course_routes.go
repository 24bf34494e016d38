package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kalimx03/warrior-track-new/internal/controllers"
)

// RegisterCourseRoutes registers course-level routes. The group is
// already behind the auth middleware; instructor-only endpoints add
// the faculty role gate on top.
func RegisterCourseRoutes(
	router *gin.RouterGroup,
	courseController *controllers.CourseController,
	sessionController *controllers.SessionController,
	attendanceController *controllers.AttendanceController,
	facultyOnly gin.HandlerFunc,
) {
	// GET /courses/:id/sessions/active - Is attendance open right now?
	router.GET("/:id/sessions/active", sessionController.Active)

	// GET /courses/:id/attendance/me - Caller's own attendance stats
	router.GET("/:id/attendance/me", attendanceController.Stats)

	faculty := router.Group("")
	faculty.Use(facultyOnly)
	{
		// POST /courses - Create a course
		faculty.POST("", courseController.Create)

		// GET /courses - List own courses
		faculty.GET("", courseController.List)

		// POST /courses/:id/enroll - Add a student to the roster
		faculty.POST("/:id/enroll", courseController.Enroll)

		// GET /courses/:id/students - List the roster
		faculty.GET("/:id/students", courseController.Students)

		// GET /courses/:id/sessions - Session history with counts
		faculty.GET("/:id/sessions", sessionController.Search)

		// GET /courses/:id/attendance/report - Per-student course report
		faculty.GET("/:id/attendance/report", attendanceController.Report)
	}
}
