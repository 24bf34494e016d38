package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/facematch"
	"github.com/kalimx03/warrior-track-new/internal/middleware"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/services"
)

type AttendanceController struct {
	attendanceService *services.AttendanceService
	enrollmentService *services.FaceEnrollmentService
	matcher           *facematch.Matcher
}

func NewAttendanceController(
	attendanceService *services.AttendanceService,
	enrollmentService *services.FaceEnrollmentService,
	matcher *facematch.Matcher,
) *AttendanceController {
	return &AttendanceController{
		attendanceService: attendanceService,
		enrollmentService: enrollmentService,
		matcher:           matcher,
	}
}

type markRequest struct {
	Code string `json:"code" binding:"required"`
	// Descriptor is the live face embedding captured after the blink
	// check. Optional: THEORY sessions have no biometric gate, and a
	// LAB scan without one records as unverified rather than failing.
	Descriptor []float64 `json:"descriptor"`
}

// Mark verifies the presented code and records the caller present.
// POST /sessions/:id/attendance
func (ac *AttendanceController) Mark(c *gin.Context) {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid session id"})
		return
	}

	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	faceCheck, err := ac.faceCheck(studentID, req.Descriptor)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Verification failed", "message": err.Error()})
		return
	}

	attendanceID, err := ac.attendanceService.Mark(studentID, sessionID, req.Code, faceCheck)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	resp := gin.H{
		"message":       "Attendance recorded",
		"attendance_id": attendanceID,
	}
	if faceCheck != nil {
		resp["face_check"] = *faceCheck
	}
	c.JSON(http.StatusOK, resp)
}

// faceCheck compares the live descriptor against the stored
// enrollment. No descriptor means no biometric claim at all; a
// descriptor without an enrollment degrades to UNVERIFIED instead of
// blocking. A failed comparison is the one hard stop.
func (ac *AttendanceController) faceCheck(studentID uuid.UUID, live []float64) (*models.FaceCheck, error) {
	if len(live) == 0 {
		return nil, nil
	}

	stored, err := ac.enrollmentService.Descriptor(studentID)
	if err != nil {
		return nil, err
	}

	outcome, err := ac.matcher.Match(live, stored)
	if err != nil {
		return nil, err
	}
	if !outcome.Enrolled {
		check := models.FaceCheckUnverified
		return &check, nil
	}
	if !outcome.Verified {
		return nil, facematch.ErrNoMatch
	}
	check := models.FaceCheckVerified
	return &check, nil
}

type manualUpdateRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// ManualUpdate lets the owning instructor override a student's record.
// PUT /sessions/:id/attendance
func (ac *AttendanceController) ManualUpdate(c *gin.Context) {
	facultyID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid session id"})
		return
	}

	var req manualUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid student id"})
		return
	}

	status := models.AttendanceStatus(req.Status)
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "status must be PRESENT or ABSENT"})
		return
	}

	attendanceID, err := ac.attendanceService.ManualUpdate(facultyID, sessionID, studentID, status)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance_id": attendanceID})
}

// Roster lists recorded attendance for a session.
// GET /sessions/:id/attendance
func (ac *AttendanceController) Roster(c *gin.Context) {
	facultyID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid session id"})
		return
	}

	roster, err := ac.attendanceService.Roster(facultyID, sessionID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roster": roster})
}

// Stats returns the caller's own attendance percentage for a course.
// GET /courses/:id/attendance/me
func (ac *AttendanceController) Stats(c *gin.Context) {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid course id"})
		return
	}

	stats, err := ac.attendanceService.StatsForStudent(studentID, courseID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Report builds the per-student course report for the owning
// instructor.
// GET /courses/:id/attendance/report
func (ac *AttendanceController) Report(c *gin.Context) {
	facultyID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid course id"})
		return
	}

	report, err := ac.attendanceService.CourseReport(facultyID, courseID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
