package handlers

import (
	"medreminder/internal/middleware"
	"medreminder/internal/models"
	"medreminder/internal/response"
	"medreminder/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionStore issues and revokes session tokens.
type SessionStore interface {
	Create(user models.User) (string, error)
	Invalidate(token string)
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	sessions    SessionStore
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, sessions SessionStore, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		log:         log,
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	SessionID string `json:"sessionId"`
}

// HandleRegister handles new user registration and opens a session.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.authService.Register(req)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return h.startSession(c, fiber.StatusCreated, user)
}

// HandleLogin checks credentials and opens a session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return h.startSession(c, fiber.StatusOK, user)
}

// HandleLogout drops the caller's session. It succeeds without a valid token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if token := middleware.BearerToken(c); token != "" {
		h.sessions.Invalidate(token)
	}
	return response.Message(c, fiber.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) startSession(c *fiber.Ctx, status int, user *models.User) error {
	token, err := h.sessions.Create(*user)
	if err != nil {
		h.log.WithError(err).Error("Failed to create session")
		return response.Error(c, fiber.StatusInternalServerError, "Could not create session")
	}
	return response.Data(c, status, sessionResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		SessionID: token,
	})
}
