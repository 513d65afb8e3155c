package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"statdash/adapters/tabular"
	"statdash/app"
	"statdash/internal"
	"statdash/internal/analysis"
	"statdash/internal/selection"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
)

//go:embed templates/*.html static
var embeddedFiles embed.FS

// Options configures the dashboard server
type Options struct {
	MaxUploadBytes  int64
	DefaultEncoding string
	HistoryLimit    int
	SecureCookies   bool
}

// Server is the dashboard web server
type Server struct {
	router    *gin.Engine
	service   *app.AnalysisService
	templates *template.Template
	opts      Options
	logger    *internal.Logger
}

// NewServer creates the server and registers its routes
func NewServer(service *app.AnalysisService, opts Options, logger *internal.Logger) (*Server, error) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if opts.DefaultEncoding == "" {
		opts.DefaultEncoding = "utf-8"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	funcMap := template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"join":  strings.Join,
		"deref": func(b *bool) bool { return b != nil && *b },
		"until": func(n int) []int {
			res := make([]int, n)
			for i := range res {
				res[i] = i
			}
			return res
		},
		"contains": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
		"formatDuration": func(ms float64) string {
			if ms < 1000 {
				return fmt.Sprintf("%.1fms", ms)
			}
			return fmt.Sprintf("%.2fs", ms/1000)
		},
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		service:   service,
		templates: templates,
		opts:      opts,
		logger:    logger,
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() error {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	s.router.MaxMultipartMemory = s.opts.MaxUploadBytes
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleDashboard)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/select", s.handleSelect)
	s.router.POST("/analyze", s.handleAnalyze)
	s.router.POST("/reset", s.handleReset)

	s.router.GET("/chisquare", s.handleChiSquareForm)
	s.router.POST("/chisquare", s.handleChiSquare)

	s.router.GET("/charts/:index", s.handleChart)
	s.router.GET("/report.pdf", s.handleReport)
	s.router.GET("/history", s.handleHistory)

	api := s.router.Group("/api")
	api.GET("/session", s.handleAPISession)
	api.GET("/result", s.handleAPIResult)
	api.GET("/history", s.handleAPIHistory)
}

// Handler returns the gzip-wrapped router
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[Server] dashboard listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("[Server] shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type procedureOption struct {
	Value       string
	Label       string
	Requirement string
}

func procedureOptions() []procedureOption {
	opts := make([]procedureOption, 0, len(analysis.Procedures))
	for _, p := range analysis.Procedures {
		req, err := selection.RequirementFor(string(p))
		desc := ""
		if err == nil {
			desc = req.String()
		}
		opts = append(opts, procedureOption{Value: string(p), Label: p.Label(), Requirement: desc})
	}
	return opts
}

var encodingOptions = tabular.Encodings
