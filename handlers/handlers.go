package handlers

import (
	"net/http"

	"pollboard-backend/auth"
	"pollboard-backend/mq"

	"github.com/gin-gonic/gin"
)

// voteBridge publishes tally updates after each vote. Nil until
// InitHandlers runs, which keeps request handling working in tests that
// never start the bridge.
var voteBridge *mq.Bridge

// InitHandlers wires package-level dependencies shared by the handlers.
func InitHandlers(bridge *mq.Bridge) {
	voteBridge = bridge
}

// SessionHandler is a request handler that needs the authenticated session.
type SessionHandler func(c *gin.Context, session *auth.Session)

// WithSession adapts a SessionHandler into a gin handler, pulling the
// session placed in the context by auth.RequireSession.
func WithSession(handler SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := auth.SessionFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		handler(c, session)
	}
}
