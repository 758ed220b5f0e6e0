package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docseal/internal/domain"
	"docseal/internal/infra/auth"
)

const sessionContextKey = "session"

func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			// Websocket clients cannot set headers from the browser.
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			c.Abort()
			return
		}
		session, err := s.sessions.Parse(token)
		if err != nil {
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
			c.Abort()
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}

func currentSession(c *gin.Context) (auth.Session, bool) {
	raw, ok := c.Get(sessionContextKey)
	if !ok {
		return auth.Session{}, false
	}
	session, ok := raw.(auth.Session)
	return session, ok
}

// currentActor resolves the full staff account behind the session; lifecycle
// messages carry the actor's name, not just an id.
func (s *Server) currentActor(c *gin.Context) (domain.StaffAccount, bool) {
	session, ok := currentSession(c)
	if !ok {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "no session")
		return domain.StaffAccount{}, false
	}
	account, err := s.accounts.GetByID(c.Request.Context(), session.AccountID)
	if err != nil {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unknown account")
		return domain.StaffAccount{}, false
	}
	return account, true
}
