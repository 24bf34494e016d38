package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kalimx03/warrior-track-new/internal/controllers"
)

// SetupRoutes registers all application routes.
func SetupRoutes(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	sessionController *controllers.SessionController,
	attendanceController *controllers.AttendanceController,
	faceController *controllers.FaceController,
	authMiddleware gin.HandlerFunc,
	facultyOnly gin.HandlerFunc,
) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/")

	// Auth routes: /auth/*
	authGroup := api.Group("/auth")
	RegisterAuthRoutes(authGroup, authController, authMiddleware)

	// User profile route: /user
	userGroup := api.Group("/user")
	userGroup.Use(authMiddleware)
	{
		userGroup.GET("", authController.Profile)
	}

	// Course routes: /courses/*
	coursesGroup := api.Group("/courses")
	coursesGroup.Use(authMiddleware)
	RegisterCourseRoutes(coursesGroup, courseController, sessionController, attendanceController, facultyOnly)

	// Session routes: /sessions/*
	sessionsGroup := api.Group("/sessions")
	sessionsGroup.Use(authMiddleware)
	RegisterSessionRoutes(sessionsGroup, sessionController, attendanceController, facultyOnly)

	// Face enrollment routes: /face/*
	faceGroup := api.Group("/face")
	faceGroup.Use(authMiddleware)
	RegisterFaceRoutes(faceGroup, faceController)
}
