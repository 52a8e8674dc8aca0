// api/handlers/auth_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-seeder/api/middleware"
	"github.com/Annany2002/nebula-seeder/api/models"
	"github.com/Annany2002/nebula-seeder/config"
	"github.com/Annany2002/nebula-seeder/internal/auth"
	"github.com/Annany2002/nebula-seeder/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// defaultOperator names the session when the login request gives no operator.
const defaultOperator = "operator"

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	Cfg *config.Config // Application configuration
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

// Login checks the operator password and issues a session token on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Login binding error: %v", err)
		_ = c.Error(err) // Attach binding error
		return           // Let middleware handle
	}

	operator := req.Operator
	if operator == "" {
		operator = defaultOperator
	}

	if h.Cfg.OperatorPasswordHash == "" || !auth.CheckPasswordHash(req.Password, h.Cfg.OperatorPasswordHash) {
		customLog.Warnf("Login attempt failed for operator %s: invalid password", operator)
		_ = c.Error(auth.ErrInvalidCredentials)
		return
	}

	tokenString, session, err := auth.IssueSession(operator, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		customLog.Warnf("Failed to issue session for operator %s: %v", operator, err)
		_ = c.Error(err)
		return
	}

	customLog.Printf("Operator %s logged in (session %s)", operator, session.ID)
	c.JSON(http.StatusOK, models.LoginResponse{
		Message:   "Logged in successfully",
		Token:     tokenString,
		ExpiresAt: session.ExpiresAt,
	})
}

// Me describes the session the request was admitted with.
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		_ = c.Error(auth.ErrMissingToken)
		return
	}
	c.JSON(http.StatusOK, models.SessionResponse{
		Operator:  session.Operator,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	})
}
