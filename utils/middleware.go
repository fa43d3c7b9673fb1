package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const PasswordHeader = "X-Access-Password"

// Authorizer decides whether a request may pass the access gate.
type Authorizer interface {
	Authorize(token, password string) error
}

// GateMiddleware rejects requests that carry neither a valid gate token nor
// the shared password.
func GateMiddleware(gate Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		password := c.GetHeader(PasswordHeader)
		token, err := ExtractBearer(c.GetHeader("Authorization"))
		// other schemes are ignored when the password header can decide
		if err != nil && password == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
			c.Abort()
			return
		}
		if token == "" && password == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Enter the access password to edit or remove a place",
			})
			c.Abort()
			return
		}

		if err := gate.Authorize(token, password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "ERROR: Enter Correct Password"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ExtractBearer returns the token of a Bearer authorization header, or an
// empty string when the header is absent.
func ExtractBearer(authHeader string) (string, error) {
	if authHeader == "" {
		return "", nil
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.New("invalid token format")
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), nil
}
