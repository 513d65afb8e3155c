package ui

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"statdash/adapters/tabular"
	"statdash/internal/analysis"
	"statdash/internal/errors"
	"statdash/internal/presentation"
	"statdash/internal/session"
	"statdash/models"

	"github.com/gin-gonic/gin"
)

type dashboardPage struct {
	Session         session.View
	Procedures      []procedureOption
	ChartKinds      []string
	Encodings       []string
	DefaultEncoding string
	Result          *resultView
	Error           string
}

type resultView struct {
	Title       string
	HTML        template.HTML
	Summary     *presentation.SummaryTable
	Charts      []chartLink
	Warnings    []string
	Significant *bool
}

type chartLink struct {
	URL   string
	Title string
}

func newResultView(p *presentation.Presentation, chartURLs bool) *resultView {
	rv := &resultView{
		Title: p.Title,
		// presentation HTML is rendered from markdown with raw HTML skipped
		HTML:        template.HTML(p.HTML),
		Summary:     p.Summary,
		Warnings:    p.Warnings,
		Significant: p.Significant,
	}
	if chartURLs {
		for i, spec := range p.Charts {
			rv.Charts = append(rv.Charts, chartLink{URL: fmt.Sprintf("/charts/%d", i), Title: spec.Title})
		}
	}
	return rv
}

func (s *Server) renderDashboard(c *gin.Context, sess *session.Session, failure error) {
	page := dashboardPage{
		Session:         sess.Snapshot(),
		Procedures:      procedureOptions(),
		ChartKinds:      analysis.ChartKinds,
		Encodings:       encodingOptions,
		DefaultEncoding: s.opts.DefaultEncoding,
	}
	if failure != nil {
		page.Error = s.userMessage(failure)
	}
	if page.Session.HasResult {
		p, err := s.service.Present(page.Session.ID)
		if err == nil {
			page.Result = newResultView(p, true)
		}
	}
	s.renderTemplate(c, http.StatusOK, "index.html", page)
}

// userMessage turns an error into the inline warning shown on the page
func (s *Server) userMessage(err error) string {
	appErr := errors.FromDomain(err)
	switch appErr.Code {
	case errors.CodeInvalidInput, errors.CodeComputationError, errors.CodeValidationError, errors.CodeNotFound:
		return err.Error()
	case errors.CodeBusy:
		return "The server is busy, please try again."
	default:
		s.logger.Error("[Server] unexpected error: %v", err)
		return "Something went wrong while processing the request."
	}
}

func (s *Server) abortJSON(c *gin.Context, err error) {
	appErr := errors.FromDomain(err)
	status := errors.HTTPStatus(appErr.Code)
	if status == http.StatusInternalServerError {
		s.logger.Error("[Server] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": appErr.Message, "code": appErr.Code})
}

func (s *Server) handleDashboard(c *gin.Context) {
	s.renderDashboard(c, s.sessionFor(c), nil)
}

func (s *Server) handleUpload(c *gin.Context) {
	sess := s.sessionFor(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.renderDashboard(c, sess, errors.InvalidInput(fmt.Sprintf("file exceeds the %d byte upload limit", s.opts.MaxUploadBytes)))
			return
		}
		s.renderDashboard(c, sess, errors.InvalidInput("choose a file to upload"))
		return
	}
	delim, err := parseDelimiter(c.PostForm("delimiter"))
	if err != nil {
		s.renderDashboard(c, sess, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.renderDashboard(c, sess, err)
		return
	}
	defer f.Close()

	opts := tabular.Options{
		Name:      fh.Filename,
		Encoding:  c.DefaultPostForm("encoding", s.opts.DefaultEncoding),
		Delimiter: delim,
	}
	_, err = s.service.Upload(c.Request.Context(), sess.ID.String(), f, opts)
	s.renderDashboard(c, sess, err)
}

func parseDelimiter(v string) (rune, error) {
	switch v {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(v) != 1 {
		return 0, errors.InvalidInput(fmt.Sprintf("delimiter %q must be a single character", v))
	}
	r, _ := utf8.DecodeRuneInString(v)
	return r, nil
}

func parseRequest(c *gin.Context) (analysis.Request, error) {
	req := analysis.Request{
		Procedure: analysis.Procedure(c.PostForm("procedure")),
		Charts:    c.PostFormArray("charts"),
		SwapAxes:  c.PostForm("swap_axes") != "",
	}
	for _, col := range c.PostFormArray("columns") {
		if col != "" {
			req.Columns = append(req.Columns, col)
		}
	}
	if mu := strings.TrimSpace(c.PostForm("mu")); mu != "" {
		v, err := strconv.ParseFloat(mu, 64)
		if err != nil {
			return req, errors.InvalidInput(fmt.Sprintf("hypothesised mean %q is not a number", mu))
		}
		req.Mu = v
	}
	return req, nil
}

func (s *Server) handleSelect(c *gin.Context) {
	sess := s.sessionFor(c)
	req, err := parseRequest(c)
	if err == nil {
		err = s.service.Select(sess.ID.String(), req)
	}
	s.renderDashboard(c, sess, err)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	sess := s.sessionFor(c)
	req, err := parseRequest(c)
	if err == nil {
		_, err = s.service.Run(c.Request.Context(), sess.ID.String(), req)
	}
	s.renderDashboard(c, sess, err)
}

func (s *Server) handleReset(c *gin.Context) {
	sess := s.sessionFor(c)
	if err := s.service.Reset(sess.ID.String()); err != nil {
		s.renderDashboard(c, sess, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleChart(c *gin.Context) {
	sess := s.sessionFor(c)
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		s.abortJSON(c, errors.InvalidInput("chart index must be a number"))
		return
	}

	var buf bytes.Buffer
	if err := s.service.Chart(&buf, sess.ID.String(), index); err != nil {
		s.abortJSON(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (s *Server) handleReport(c *gin.Context) {
	sess := s.sessionFor(c)

	var buf bytes.Buffer
	if err := s.service.Report(&buf, sess.ID.String(), c.QueryArray("columns")); err != nil {
		s.abortJSON(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

type historyPage struct {
	Session string
	All     bool
	Runs    []*models.RunRecord
	Error   string
}

func (s *Server) handleHistory(c *gin.Context) {
	sess := s.sessionFor(c)
	all := c.Query("all") != ""
	filter := sess.ID.String()
	if all {
		filter = ""
	}

	page := historyPage{Session: sess.ID.String(), All: all}
	runs, err := s.service.History(c.Request.Context(), filter, s.opts.HistoryLimit)
	if err != nil {
		page.Error = s.userMessage(err)
	} else {
		page.Runs = runs
	}
	s.renderTemplate(c, http.StatusOK, "history.html", page)
}

func (s *Server) handleAPISession(c *gin.Context) {
	c.JSON(http.StatusOK, s.sessionFor(c).Snapshot())
}

func (s *Server) handleAPIResult(c *gin.Context) {
	sess := s.sessionFor(c)
	p, err := s.service.Present(sess.ID.String())
	if err != nil {
		s.abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleAPIHistory(c *gin.Context) {
	sess := s.sessionFor(c)
	filter := sess.ID.String()
	if c.Query("all") != "" {
		filter = ""
	}
	limit := s.opts.HistoryLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			s.abortJSON(c, errors.ValidationError(fmt.Sprintf("limit %q must be a positive integer", raw)))
			return
		}
		if v < limit {
			limit = v
		}
	}
	runs, err := s.service.History(c.Request.Context(), filter, limit)
	if err != nil {
		s.abortJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
