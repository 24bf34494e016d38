package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/middleware"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/repositories"
)

// CourseController works against the repository directly: course CRUD
// carries no business rules beyond ownership, which lives here.
type CourseController struct {
	courseRepo repositories.CourseRepository
	userRepo   repositories.UserRepository
}

func NewCourseController(courseRepo repositories.CourseRepository, userRepo repositories.UserRepository) *CourseController {
	return &CourseController{courseRepo: courseRepo, userRepo: userRepo}
}

type createCourseRequest struct {
	Name        string  `json:"name" binding:"required"`
	Code        string  `json:"code" binding:"required"`
	Description *string `json:"description"`
}

// Create registers a new course owned by the calling instructor.
// POST /courses
func (cc *CourseController) Create(c *gin.Context) {
	facultyID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	course := &models.Course{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		FacultyID:   facultyID,
	}
	if err := cc.courseRepo.Create(course); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "message": "course code already in use"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"course": course})
}

// List returns the calling instructor's courses.
// GET /courses
func (cc *CourseController) List(c *gin.Context) {
	facultyID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	courses, err := cc.courseRepo.ListByFaculty(facultyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

type enrollRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// Enroll adds a student to the course roster. Only the owning
// instructor may enroll; enrolling the same student twice fails on the
// roster uniqueness constraint.
// POST /courses/:id/enroll
func (cc *CourseController) Enroll(c *gin.Context) {
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

	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid student id"})
		return
	}

	course, err := cc.courseRepo.GetByID(courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if course == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "message": "course not found"})
		return
	}
	if course.FacultyID != facultyID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "message": "not the course owner"})
		return
	}

	student, err := cc.userRepo.GetByID(studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if student == nil || student.Role != models.RoleStudent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "student not found"})
		return
	}

	if err := cc.courseRepo.Enroll(courseID, studentID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "message": "student already enrolled"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Student enrolled"})
}

// Students lists the course roster for the owning instructor.
// GET /courses/:id/students
func (cc *CourseController) Students(c *gin.Context) {
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

	course, err := cc.courseRepo.GetByID(courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if course == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "message": "course not found"})
		return
	}
	if course.FacultyID != facultyID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "message": "not the course owner"})
		return
	}

	students, err := cc.courseRepo.ListEnrolledStudents(courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := make([]gin.H, 0, len(students))
	for _, s := range students {
		out = append(out, gin.H{
			"id":            s.ID,
			"username":      s.Username,
			"email":         s.Email,
			"face_enrolled": s.HasFaceEnrollment(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"students": out})
}
