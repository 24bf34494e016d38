package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/facematch"
	"github.com/kalimx03/warrior-track-new/internal/middleware"
	"github.com/kalimx03/warrior-track-new/internal/services"
)

type FaceController struct {
	enrollmentService *services.FaceEnrollmentService
}

func NewFaceController(enrollmentService *services.FaceEnrollmentService) *FaceController {
	return &FaceController{enrollmentService: enrollmentService}
}

// Enroll stores the caller's face descriptor, replacing any previous
// enrollment. The request is multipart: a "descriptor" field holding
// the JSON array of 128 floats, plus an optional "snapshot" image kept
// for instructor review.
// POST /face/enroll
func (fc *FaceController) Enroll(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	raw := c.PostForm("descriptor")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "descriptor field is required"})
		return
	}

	var descriptor []float64
	if err := json.Unmarshal([]byte(raw), &descriptor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "descriptor must be a JSON array of numbers"})
		return
	}

	input := services.EnrollInput{Descriptor: descriptor}

	if fileHeader, err := c.FormFile("snapshot"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": "cannot open uploaded snapshot"})
			return
		}
		defer file.Close()

		input.Snapshot = file
		input.ContentType = fileHeader.Header.Get("Content-Type")
		input.Size = fileHeader.Size
	}

	if err := fc.enrollmentService.Enroll(c.Request.Context(), userID, input); err != nil {
		if errors.Is(err, facematch.ErrBadDescriptor) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
			return
		}
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Face enrollment stored"})
}

// Status reports whether the caller has an enrollment on file.
// GET /face/status
func (fc *FaceController) Status(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	descriptor, err := fc.enrollmentService.Descriptor(userID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrolled": len(descriptor) > 0})
}

// Snapshot streams the webcam capture stored at enrollment. Users can
// fetch their own; faculty and admins can fetch any student's.
// GET /face/:userID/snapshot
func (fc *FaceController) Snapshot(c *gin.Context) {
	callerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid user id"})
		return
	}

	result, err := fc.enrollmentService.Snapshot(c.Request.Context(), callerID, userID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	defer result.Reader.Close()

	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, result.Size, contentType, result.Reader, nil)
}

// Reset clears another user's enrollment. Admin-only.
// DELETE /face/:userID
func (fc *FaceController) Reset(c *gin.Context) {
	adminID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid user id"})
		return
	}

	if err := fc.enrollmentService.Reset(c.Request.Context(), adminID, userID); err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Face enrollment cleared"})
}
