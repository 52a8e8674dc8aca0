// api/middleware/error_handler.go
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10" // Import validator for binding errors

	"github.com/Annany2002/nebula-seeder/internal/auth"
	"github.com/Annany2002/nebula-seeder/internal/dataverse"
	"github.com/Annany2002/nebula-seeder/internal/generation"
	"github.com/Annany2002/nebula-seeder/internal/seeder"
	"github.com/Annany2002/nebula-seeder/internal/storage"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// We only handle the last error for the response.
		err := c.Errors.Last().Err
		customLog.Printf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		statusCode, body := mapError(err)
		if runID, ok := c.Get(RunIDKey); ok {
			body["run_id"] = runID
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, body)
		} else {
			customLog.Warnf("[ErrorHandler] Warning: Response already written before handling error.")
		}
	}
}

// mapError turns an attached error into a status code and JSON body.
func mapError(err error) (int, gin.H) {
	var (
		validationErrs validator.ValidationErrors
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		authErr        *auth.AuthenticationError
		formatErr      *generation.GenerationFormatError
		submissionErr  *dataverse.SubmissionError
		transportErr   *url.Error
	)

	switch {
	case errors.Is(err, seeder.ErrValidation):
		return http.StatusBadRequest, gin.H{"error": err.Error()}

	case errors.As(err, &validationErrs):
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			customLog.Debugf("Validation Error: Field %s failed on %s", fe.Field(), fe.Tag())
			fields[fe.Field()] = fe.Tag()
		}
		return http.StatusBadRequest, gin.H{"error": "Validation failed. Please check your input.", "fields": fields}

	// Binding returns io.EOF unwrapped for an empty body. Wrapped EOFs come from upstream calls.
	case err == io.EOF, err == io.ErrUnexpectedEOF, errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return http.StatusBadRequest, gin.H{"error": "Request body must be valid JSON."}

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidCredentials.Error()}

	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()}

	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, gin.H{"error": "Authentication token has expired."}

	case errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenClaimsInvalid):
		return http.StatusUnauthorized, gin.H{"error": "Invalid or malformed authentication token."}

	case errors.As(err, &authErr):
		// Platform token exchange rejected; the authority's text is passed through.
		return http.StatusUnauthorized, gin.H{"error": "Authentication failed.", "status_code": authErr.StatusCode, "details": authErr.Body}

	case errors.Is(err, dataverse.ErrDiscovery):
		return http.StatusNotFound, gin.H{"error": err.Error()}

	case errors.As(err, &formatErr):
		return http.StatusBadGateway, gin.H{"error": formatErr.Error(), "output": formatErr.Output}

	case errors.Is(err, generation.ErrGeneration):
		return http.StatusBadGateway, gin.H{"error": err.Error()}

	case errors.As(err, &submissionErr):
		return http.StatusBadGateway, gin.H{"error": "Batch request failed.", "status_code": submissionErr.StatusCode, "details": submissionErr.Body}

	case errors.Is(err, storage.ErrRunNotFound):
		return http.StatusNotFound, gin.H{"error": err.Error()}

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, gin.H{"error": "Upstream request timed out."}

	case errors.As(err, &transportErr):
		return http.StatusBadGateway, gin.H{"error": "Upstream request failed.", "details": transportErr.Error()}

	default:
		customLog.Warnf("Unhandled error type: %T, Error: %v", err, err)
		return http.StatusInternalServerError, gin.H{"error": "An unexpected internal server error occurred."}
	}
}
