package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kalimx03/warrior-track-new/internal/controllers"
)

// RegisterFaceRoutes registers face enrollment routes. The group is
// already behind the auth middleware; Reset additionally checks the
// admin role inside the service.
func RegisterFaceRoutes(router *gin.RouterGroup, faceController *controllers.FaceController) {
	// POST /face/enroll - Store or replace the caller's enrollment
	router.POST("/enroll", faceController.Enroll)

	// GET /face/status - Does the caller have an enrollment?
	router.GET("/status", faceController.Status)

	// GET /face/:userID/snapshot - Stream the enrollment capture
	router.GET("/:userID/snapshot", faceController.Snapshot)

	// DELETE /face/:userID - Clear a user's enrollment (admin)
	router.DELETE("/:userID", faceController.Reset)
}
