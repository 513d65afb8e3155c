package ui

import (
	"bytes"

	"statdash/internal/errors"

	"github.com/gin-gonic/gin"
)

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	// Render to a buffer first so a template error never leaves a half-written page
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("[Template] %s: %v", templateName, err)
		s.abortJSON(c, errors.InternalError("template rendering failed"))
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.logger.Warn("[Template] error writing response: %v", err)
	}
}
