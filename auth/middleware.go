package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// sessionKey is where the middleware stores the Session in the gin context.
const sessionKey = "auth_session"

// RequireSession validates the Bearer token and places the resulting
// Session into the request context. Unauthenticated requests get a 401.
func RequireSession(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		session, err := ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFromContext returns the Session stored by RequireSession.
func SessionFromContext(c *gin.Context) (*Session, bool) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*Session)
	return session, ok
}
