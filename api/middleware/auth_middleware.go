// api/middleware/auth_middleware.go
package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-seeder/config"
	"github.com/Annany2002/nebula-seeder/internal/auth"
	"github.com/Annany2002/nebula-seeder/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Context keys set by the middleware chain.
const (
	OperatorKey = "operator"
	SessionKey  = "session"
	RunIDKey    = "runId"
)

// AuthMiddleware admits requests carrying a valid operator session token.
// Rejections are attached to the context and written by ErrorHandler.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessionFromHeader(c.GetHeader("Authorization"), cfg.JWTSecret)
		if err != nil {
			customLog.Warnf("AuthMiddleware: rejected %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		customLog.Debugf("AuthMiddleware: session %s admitted for operator %s", session.ID, session.Operator)
		c.Set(OperatorKey, session.Operator)
		c.Set(SessionKey, session)
		c.Next()
	}
}

func sessionFromHeader(header, secret string) (*auth.Session, error) {
	if header == "" {
		return nil, auth.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return nil, fmt.Errorf("%w: authorization header format must be Bearer {token}", auth.ErrTokenMalformed)
	}
	return auth.ParseSession(token, secret)
}

// CurrentSession returns the session AuthMiddleware stored on c.
func CurrentSession(c *gin.Context) (*auth.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*auth.Session)
	return session, ok
}
