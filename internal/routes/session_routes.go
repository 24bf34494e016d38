package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kalimx03/warrior-track-new/internal/controllers"
)

// RegisterSessionRoutes registers session lifecycle and attendance
// routes. The group is already behind the auth middleware.
func RegisterSessionRoutes(
	router *gin.RouterGroup,
	sessionController *controllers.SessionController,
	attendanceController *controllers.AttendanceController,
	facultyOnly gin.HandlerFunc,
) {
	// POST /sessions/:id/attendance - Student marks themselves present
	router.POST("/:id/attendance", attendanceController.Mark)

	faculty := router.Group("")
	faculty.Use(facultyOnly)
	{
		// POST /sessions - Start a session (ends any previous active one)
		faculty.POST("", sessionController.Create)

		// POST /sessions/:id/end - Close the session
		faculty.POST("/:id/end", sessionController.End)

		// POST /sessions/:id/lock - Pause/resume attendance intake
		faculty.POST("/:id/lock", sessionController.ToggleLock)

		// POST /sessions/:id/regenerate - Mint a fresh secret or PIN
		faculty.POST("/:id/regenerate", sessionController.Regenerate)

		// GET /sessions/:id/display - Current projectable code
		faculty.GET("/:id/display", sessionController.Display)

		// GET /sessions/:id/display/ws - Websocket code stream
		faculty.GET("/:id/display/ws", sessionController.StreamDisplay)

		// GET /sessions/:id/attendance - Live roster
		faculty.GET("/:id/attendance", attendanceController.Roster)

		// PUT /sessions/:id/attendance - Manual status override
		faculty.PUT("/:id/attendance", attendanceController.ManualUpdate)
	}
}
