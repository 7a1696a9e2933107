package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/myshop-dev/myshop/internal/auth"
	"github.com/myshop-dev/myshop/internal/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is the token, role and user id a client stores after
// logging in
type SessionResponse struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID string `json:"userId"`
}

// RegisterRequest represents a signup request
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Mobile    string `json:"mobile" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
}

// RegisterResponse wraps the new account's session
type RegisterResponse struct {
	User SessionResponse `json:"user"`
}

// UserDetail represents user information returned in responses
type UserDetail struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Role      string `json:"role"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Server) issueSession(c *gin.Context, user *models.User) (*SessionResponse, bool) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		respondMessage(c, http.StatusInternalServerError, "Failed to generate token")
		return nil, false
	}
	return &SessionResponse{Token: token, Role: user.Role, UserID: user.ID}, true
}

// @Summary Login
// @Description Authenticate with email and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if !s.bindJSON(c, &req) {
		return
	}

	// Find user by email
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondMessage(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		respondMessage(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	session, ok := s.issueSession(c, &user)
	if !ok {
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("User logged in")

	c.JSON(http.StatusOK, session)
}

// @Summary Register
// @Description Create a shopper account and log it in
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Register request"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/users/register [post]
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if !s.bindJSON(c, &req) {
		return
	}

	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check email")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		respondMessage(c, http.StatusConflict, "Email already registered")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		respondMessage(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	// Self-registered accounts are always shoppers
	user := &models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Mobile:       strings.TrimSpace(req.Mobile),
		PasswordHash: passwordHash,
		Role:         auth.RoleUser,
	}

	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		respondMessage(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	session, ok := s.issueSession(c, user)
	if !ok {
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User registered")

	c.JSON(http.StatusCreated, RegisterResponse{User: *session})
}

// @Summary Get current user
// @Description Get information about the currently authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserDetail
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/me [get]
func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user models.User
	if err := models.FindByID(s.db, sessionData.UserID, &user); err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to find user")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, UserDetail{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Mobile:    user.Mobile,
		Role:      user.Role,
	})
}
