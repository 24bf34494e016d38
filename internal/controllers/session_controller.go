package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kalimx03/warrior-track-new/internal/middleware"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/repositories"
	"github.com/kalimx03/warrior-track-new/internal/services"
)

// upgrader accepts any origin: the projector page runs on whatever
// host the classroom display uses, and the route sits behind the auth
// middleware, which takes the JWT from the token query parameter for
// websocket clients.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type SessionController struct {
	sessionService *services.SessionService
}

func NewSessionController(sessionService *services.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

type createSessionRequest struct {
	CourseID string `json:"course_id" binding:"required"`
	Type     string `json:"type" binding:"required"`
}

// Create starts a session, ending any previous active one for the
// course.
// POST /sessions
func (sc *SessionController) Create(c *gin.Context) {
	facultyID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid course id"})
		return
	}

	sessionType := models.SessionType(req.Type)
	if !sessionType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "type must be LAB or THEORY"})
		return
	}

	session, err := sc.sessionService.Create(facultyID, courseID, sessionType)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Session created",
		"session": gin.H{
			"id":         session.ID,
			"course_id":  session.CourseID,
			"type":       session.Type,
			"start_time": session.StartTime,
			"is_active":  session.IsActive,
		},
	})
}

// End closes the session. Ending an already-ended session succeeds
// without touching anything.
// POST /sessions/:id/end
func (sc *SessionController) End(c *gin.Context) {
	facultyID, sessionID, ok := sc.ownedSessionParams(c)
	if !ok {
		return
	}

	if err := sc.sessionService.End(facultyID, sessionID); err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session ended"})
}

// ToggleLock flips the intake pause flag.
// POST /sessions/:id/lock
func (sc *SessionController) ToggleLock(c *gin.Context) {
	facultyID, sessionID, ok := sc.ownedSessionParams(c)
	if !ok {
		return
	}

	locked, err := sc.sessionService.ToggleLock(facultyID, sessionID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locked": locked})
}

// Regenerate mints a fresh secret or PIN on demand.
// POST /sessions/:id/regenerate
func (sc *SessionController) Regenerate(c *gin.Context) {
	facultyID, sessionID, ok := sc.ownedSessionParams(c)
	if !ok {
		return
	}

	code, err := sc.sessionService.RegenerateCode(facultyID, sessionID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

// Display returns the value the instructor projects right now.
// GET /sessions/:id/display
func (sc *SessionController) Display(c *gin.Context) {
	facultyID, sessionID, ok := sc.ownedSessionParams(c)
	if !ok {
		return
	}

	display, err := sc.sessionService.DisplayCode(facultyID, sessionID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, display)
}

// StreamDisplay pushes display codes over a websocket so the projector
// page never has to poll. LAB sockets tick on the rotation window;
// THEORY sockets tick each second so lock and expiry propagate fast.
// GET /sessions/:id/display/ws
func (sc *SessionController) StreamDisplay(c *gin.Context) {
	facultyID, sessionID, ok := sc.ownedSessionParams(c)
	if !ok {
		return
	}

	// Validate once before hijacking the connection so auth failures
	// still come back as JSON.
	display, err := sc.sessionService.DisplayCode(facultyID, sessionID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(display); err != nil {
		return
	}

	interval := time.Second
	if display.Type == models.SessionTypeLab {
		interval = sc.sessionService.LabWindow()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		display, err := sc.sessionService.DisplayCode(facultyID, sessionID)
		if err != nil {
			// Session ended, locked, or expired: tell the display why
			// and close.
			_ = conn.WriteJSON(gin.H{"error": err.Error()})
			return
		}
		if err := conn.WriteJSON(display); err != nil {
			log.Printf("display client disconnected: %v", err)
			return
		}
	}
}

// Active reports the course's open session, if any. Students poll this
// to learn that attendance is open.
// GET /courses/:id/sessions/active
func (sc *SessionController) Active(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid course id"})
		return
	}

	session, err := sc.sessionService.GetActive(courseID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active": true,
		"session": gin.H{
			"id":         session.ID,
			"type":       session.Type,
			"start_time": session.StartTime,
			"is_locked":  session.IsLocked,
		},
	})
}

// Search lists a course's session history with attendance counts.
// GET /courses/:id/sessions
func (sc *SessionController) Search(c *gin.Context) {
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

	var search repositories.SessionSearch
	if v := c.Query("start_after"); v != "" {
		if ms, err := parseMillis(v); err == nil {
			search.StartAfter = ms
		}
	}
	if v := c.Query("start_before"); v != "" {
		if ms, err := parseMillis(v); err == nil {
			search.StartBefore = ms
		}
	}
	if v := c.Query("type"); v != "" {
		t := models.SessionType(v)
		if !t.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "type must be LAB or THEORY"})
			return
		}
		search.Type = t
	}

	summaries, err := sc.sessionService.Search(facultyID, courseID, search)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": summaries})
}

func parseMillis(v string) (int64, error) {
	return strconv.ParseInt(v, 10, 64)
}

func (sc *SessionController) ownedSessionParams(c *gin.Context) (facultyID, sessionID uuid.UUID, ok bool) {
	facultyID, exists := middleware.CurrentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid session id"})
		return uuid.Nil, uuid.Nil, false
	}
	return facultyID, sessionID, true
}
