// internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Annany2002/nebula-seeder/api/models"
	"github.com/Annany2002/nebula-seeder/internal/logger"
)

var (
	ErrMissingToken       = errors.New("authorization header required")
	ErrTokenMalformed     = errors.New("malformed token")
	ErrTokenExpired       = errors.New("token is expired or not valid yet")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenClaimsInvalid = errors.New("invalid token claims")
	ErrInvalidCredentials = errors.New("invalid credentials")
	customLog             = logger.NewLogger()
)

// Session tokens are only accepted by this service and only for seeding.
const (
	sessionIssuer   = "nebula-seeder"
	sessionAudience = "nebula-seeder-api"
	sessionScope    = "seed"
)

// --- Password Utilities ---

// HashPassword generates a bcrypt hash for the given password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		customLog.Warnf("Error generating bcrypt hash: %v", err)
		return "", fmt.Errorf("failed to hash password")
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		customLog.Warnf("Unexpected error comparing password hash: %v", err)
	}
	return err == nil
}

// --- Operator sessions ---

// Session is an authenticated operator of the seeding API.
type Session struct {
	ID        string
	Operator  string
	ExpiresAt time.Time
}

// IssueSession signs an HS256 session token for operator, valid for ttl.
func IssueSession(operator, secret string, ttl time.Duration) (string, *Session, error) {
	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		Operator:  operator,
		ExpiresAt: now.Add(ttl).Truncate(time.Second),
	}

	claims := models.SessionClaims{
		Scope: sessionScope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   operator,
			Issuer:    sessionIssuer,
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		customLog.Warnf("Error signing session for operator %s: %v", operator, err)
		return "", nil, fmt.Errorf("failed to generate token")
	}
	return signed, session, nil
}

var sessionParser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuer(sessionIssuer),
	jwt.WithAudience(sessionAudience),
	jwt.WithExpirationRequired(),
)

// ParseSession validates a session token and returns its session.
func ParseSession(tokenString, secret string) (*Session, error) {
	claims := &models.SessionClaims{}
	_, err := sessionParser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		customLog.Debugf("ParseSession: %v", err)
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return nil, ErrTokenClaimsInvalid
		default:
			return nil, ErrTokenInvalid
		}
	}

	if claims.Scope != sessionScope || claims.Subject == "" {
		return nil, ErrTokenClaimsInvalid
	}

	return &Session{
		ID:        claims.ID,
		Operator:  claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
