package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/osvita-dev/kids-registry-api/internal/service"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
	"github.com/osvita-dev/kids-registry-api/pkg/response"
)

// Context keys for the validated session and its raw bearer token.
const (
	ContextSessionKey = "accessSession"
	ContextTokenKey   = "accessToken"
)

// AccessGate blocks every route behind a valid operator session. It is a
// UX gate: expiry or logout sends the client back to the key prompt.
func AccessGate(access *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or malformed authorization header"))
			c.Abort()
			return
		}

		session, err := access.CheckSession(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Token returns the raw bearer token stored by AccessGate.
func Token(c *gin.Context) string {
	if v, exists := c.Get(ContextTokenKey); exists {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}
