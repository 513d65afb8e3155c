package ui

import (
	"net/http"

	"statdash/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "statdash_session"

// sessionFor returns the caller's session, issuing a cookie for a new one
func (s *Server) sessionFor(c *gin.Context) *session.Session {
	raw, _ := c.Cookie(sessionCookie)
	sess := s.service.Session(raw)
	if sess.ID.String() != raw {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, sess.ID.String(), 0, "/", "", s.opts.SecureCookies, true)
	}
	return sess
}
