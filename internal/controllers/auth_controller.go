package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/middleware"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/services"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Register creates a new account. Role defaults to student; faculty
// and admin accounts are expected to come from provisioning, but the
// field is accepted for development setups.
// POST /auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	role := models.UserRole(req.Role)
	if req.Role != "" && !role.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "unknown role"})
		return
	}

	user, err := ac.authService.Register(req.Username, req.Email, req.Password, role)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "message": "username or email already in use"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login runs the password step. When TOTP is enabled the response
// carries a short-lived login session id instead of an access token
// and the client finishes at /auth/login/totp.
// POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	user, totpEnabled, err := ac.authService.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": "invalid email or password"})
		return
	}

	if totpEnabled {
		sessionID, err := ac.authService.CreateLoginSession(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"totp_required": true,
			"login_session": sessionID,
		})
		return
	}

	ac.issueToken(c, user)
}

type loginTOTPRequest struct {
	LoginSession string `json:"login_session" binding:"required"`
	Code         string `json:"code" binding:"required"`
}

// LoginTOTP finishes two-step login with the authenticator code.
// POST /auth/login/totp
func (ac *AuthController) LoginTOTP(c *gin.Context) {
	var req loginTOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	sessionID, err := uuid.Parse(req.LoginSession)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": "invalid login session id"})
		return
	}

	user, err := ac.authService.LoginWithTOTPSession(sessionID, req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": err.Error()})
		return
	}

	ac.issueToken(c, user)
}

// TOTPSetup generates a secret and provisioning QR for the caller.
// POST /auth/totp/setup
func (ac *AuthController) TOTPSetup(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	setup, err := ac.authService.SetupTOTP(userID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret":  setup.Secret,
		"qr_code": setup.QRCode,
	})
}

type totpCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// TOTPVerify confirms the first code and enables TOTP.
// POST /auth/totp/verify
func (ac *AuthController) TOTPVerify(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req totpCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	if err := ac.authService.VerifyTOTP(userID, req.Code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "TOTP enabled"})
}

// TOTPDisable turns TOTP off after validating a current code.
// POST /auth/totp/disable
func (ac *AuthController) TOTPDisable(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req totpCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}

	if err := ac.authService.DisableTOTP(userID, req.Code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "TOTP disabled"})
}

// Profile returns the authenticated user.
// GET /user
func (ac *AuthController) Profile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := ac.authService.GetProfile(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Unable to retrieve user profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"email":         user.Email,
			"role":          user.Role,
			"totpEnabled":   user.TOTPEnabled,
			"face_enrolled": user.HasFaceEnrollment(),
		},
	})
}

// Logout is a client-side token discard; nothing to revoke server-side.
// POST /auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "User logged out successfully"})
}

func (ac *AuthController) issueToken(c *gin.Context, user *models.User) {
	accessToken, err := ac.authService.GenerateAccessToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}
