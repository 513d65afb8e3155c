package app

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"statdash/adapters/tabular"
	"statdash/domain/core"
	"statdash/internal"
	"statdash/internal/analysis"
	"statdash/internal/errors"
	"statdash/internal/metrics"
	"statdash/internal/presentation"
	"statdash/internal/render"
	"statdash/internal/session"
	"statdash/models"
	"statdash/ports"

	"golang.org/x/sync/semaphore"
)

// ServiceOptions tunes the analysis service
type ServiceOptions struct {
	MaxConcurrent int // computations allowed at once across all sessions
	MaxRows       int // 0 means unlimited
	ReportHead    int // values drawn in report line charts
}

// AnalysisService drives the dashboard workflow: uploads, column selection,
// computation, presentation and run history.
type AnalysisService struct {
	store    *session.Store
	engine   *analysis.Engine
	renderer *render.Renderer
	runs     ports.RunRepository
	metrics  *metrics.Metrics
	sem      *semaphore.Weighted
	opts     ServiceOptions
	logger   *internal.Logger
}

// NewAnalysisService wires the service. metrics may be nil.
func NewAnalysisService(
	store *session.Store,
	engine *analysis.Engine,
	renderer *render.Renderer,
	runs ports.RunRepository,
	m *metrics.Metrics,
	opts ServiceOptions,
	logger *internal.Logger,
) *AnalysisService {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 4
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		store:    store,
		engine:   engine,
		renderer: renderer,
		runs:     runs,
		metrics:  m,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		opts:     opts,
		logger:   logger,
	}
}

// Session returns the session for a client-supplied ID, creating one when the ID
// is unknown
func (s *AnalysisService) Session(raw string) *session.Session {
	sess, created := s.store.GetOrCreate(raw)
	if created {
		s.logger.Debug("[AnalysisService] created session %s", sess.ID)
		s.updateSessionGauge()
	}
	return sess
}

func (s *AnalysisService) lookup(raw string) (*session.Session, error) {
	id, err := core.ParseSessionID(raw)
	if err != nil {
		return nil, core.ErrSessionNotFound
	}
	return s.store.Get(id)
}

// Upload parses r and loads it into the session. A failed parse leaves the
// session untouched.
func (s *AnalysisService) Upload(ctx context.Context, sessionID string, r io.Reader, opts tabular.Options) (*session.Session, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if opts.MaxRows == 0 {
		opts.MaxRows = s.opts.MaxRows
	}
	if opts.Format == "" {
		opts.Format = tabular.FormatForName(opts.Name)
	}
	encoding, err := tabular.NormalizeEncoding(opts.Encoding)
	if err != nil {
		s.observeUpload(metrics.OutcomeError)
		return nil, err
	}
	opts.Encoding = encoding

	t, err := tabular.Read(r, opts)
	if err != nil {
		s.observeUpload(metrics.OutcomeError)
		s.logger.Warn("[AnalysisService] upload %q rejected: %v", opts.Name, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess.LoadTable(t, opts.Name, encoding)
	s.observeUpload(metrics.OutcomeOK)
	s.logger.Info("[AnalysisService] session %s loaded %q (%d rows, %d columns)",
		sess.ID, opts.Name, t.Rows(), len(t.Columns))
	return sess, nil
}

// Select records the procedure and columns without computing
func (s *AnalysisService) Select(sessionID string, req analysis.Request) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	return sess.SelectColumns(req)
}

// Run computes req for the session and returns its presentation. Repeating the
// request that produced the current result returns it without recomputing.
func (s *AnalysisService) Run(ctx context.Context, sessionID string, req analysis.Request) (*presentation.Presentation, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.WithCode(errors.CodeBusy, fmt.Errorf("analysis queue: %w", err))
	}
	defer s.sem.Release(1)

	start := time.Now()
	a, cached, err := sess.Compute(req, s.engine.Run)
	elapsed := time.Since(start)

	rec := models.NewRunRecord(sess.ID.String(), string(req.Procedure), req.Columns)
	rec.DurationMS = float64(elapsed.Nanoseconds()) / 1e6
	switch {
	case err != nil:
		rec.Outcome = models.RunFailed
		appErr := errors.FromDomain(err)
		rec.ErrorCode = appErr.Code
		rec.ErrorMessage = err.Error()
	case cached:
		rec.Outcome = models.RunCached
	default:
		rec.Outcome = models.RunOK
		summarize(rec, a)
	}
	s.observeProcedure(string(req.Procedure), rec.Outcome, elapsed)
	s.record(ctx, rec)

	if err != nil {
		s.logger.Debug("[AnalysisService] %s failed for session %s: %v", req.Procedure, sess.ID, err)
		return nil, err
	}
	return presentation.Present(a, s.presentOptions()), nil
}

// Present returns the presentation of the session's current result
func (s *AnalysisService) Present(sessionID string) (*presentation.Presentation, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	a, err := sess.Result()
	if err != nil {
		return nil, err
	}
	return presentation.Present(a, s.presentOptions()), nil
}

// Chart writes chart index of the current presentation as SVG
func (s *AnalysisService) Chart(w io.Writer, sessionID string, index int) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	a, err := sess.Result()
	if err != nil {
		return err
	}
	p := presentation.Present(a, s.presentOptions())
	if index < 0 || index >= len(p.Charts) {
		return errors.NotFound(fmt.Sprintf("chart %d", index))
	}
	return s.renderer.SVG(w, sess.Table(), p.Charts[index])
}

// Report writes the PDF grid for columns. With no columns it uses the current
// selection, then every column of the table.
func (s *AnalysisService) Report(w io.Writer, sessionID string, columns []string) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	t := sess.Table()
	if t == nil {
		return core.ErrNoData
	}
	if len(columns) == 0 {
		columns = sess.Request().Columns
	}
	if len(columns) == 0 {
		columns = t.Names()
	}
	return s.renderer.PDFGrid(w, t, columns, s.opts.ReportHead)
}

// ChiSquareGrid runs the chi-square test on a hand-entered contingency grid. The
// grid is independent of the session's table and leaves its state unchanged.
func (s *AnalysisService) ChiSquareGrid(ctx context.Context, sessionID string, cells [][]string, rowLabels, colLabels []string) (*presentation.Presentation, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rec := models.NewRunRecord(sess.ID.String(), string(analysis.ProcChiSquare), nil)
	res, err := chiSquareGrid(cells, rowLabels, colLabels)
	elapsed := time.Since(start)
	rec.DurationMS = float64(elapsed.Nanoseconds()) / 1e6
	rec.Summary["source"] = "grid"

	if err != nil {
		rec.Outcome = models.RunFailed
		rec.ErrorCode = errors.FromDomain(err).Code
		rec.ErrorMessage = err.Error()
		s.observeProcedure(string(analysis.ProcChiSquare), rec.Outcome, elapsed)
		s.record(ctx, rec)
		return nil, err
	}

	a := &analysis.Analysis{
		Request:    analysis.Request{Procedure: analysis.ProcChiSquare},
		Primary:    res,
		ComputedAt: time.Now(),
		Duration:   elapsed,
	}
	rec.Outcome = models.RunOK
	summarize(rec, a)
	s.observeProcedure(string(analysis.ProcChiSquare), rec.Outcome, elapsed)
	s.record(ctx, rec)
	return presentation.Present(a, s.presentOptions()), nil
}

func chiSquareGrid(cells [][]string, rowLabels, colLabels []string) (*analysis.ChiSquareResult, error) {
	observed, err := analysis.ParseContingency(cells)
	if err != nil {
		return nil, err
	}
	res, err := analysis.ChiSquare(observed)
	if err != nil {
		return nil, err
	}
	res.RowLabels = rowLabels
	res.ColLabels = colLabels
	return res, nil
}

// Reset returns the session to idle
func (s *AnalysisService) Reset(sessionID string) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	sess.Reset()
	return nil
}

// History lists recent runs, newest first. An empty sessionID lists every session.
func (s *AnalysisService) History(ctx context.Context, sessionID string, limit int) ([]*models.RunRecord, error) {
	recs, err := s.runs.ListRecent(ctx, sessionID, limit)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return recs, nil
}

// SweepIdle drops sessions idle longer than maxIdle
func (s *AnalysisService) SweepIdle(maxIdle time.Duration) int {
	n := s.store.Sweep(maxIdle)
	if n > 0 {
		s.logger.Info("[AnalysisService] expired %d idle sessions", n)
	}
	s.updateSessionGauge()
	return n
}

// StartSweeper runs SweepIdle every interval until ctx is done
func (s *AnalysisService) StartSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepIdle(maxIdle)
			}
		}
	}()
}

func (s *AnalysisService) presentOptions() presentation.Options {
	return presentation.Options{ReportHead: s.opts.ReportHead}
}

func (s *AnalysisService) record(ctx context.Context, rec *models.RunRecord) {
	if s.runs == nil {
		return
	}
	// history is best effort; a failed write never fails the user's action
	if err := s.runs.Save(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("[AnalysisService] failed to record run %s: %v", rec.ID, err)
	}
}

func (s *AnalysisService) observeProcedure(procedure, outcome string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveProcedure(procedure, outcome, elapsed)
	}
}

func (s *AnalysisService) observeUpload(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveUpload(outcome)
	}
}

func (s *AnalysisService) updateSessionGauge() {
	if s.metrics != nil {
		s.metrics.SetActiveSessions(s.store.Len())
	}
}

// summarize copies the headline statistics of a into the record
func summarize(rec *models.RunRecord, a *analysis.Analysis) {
	put := func(k string, v float64) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			rec.Summary[k] = v
		}
	}
	switch r := a.Primary.(type) {
	case *analysis.TTestResult:
		put("t", r.T)
		put("p", r.P)
		put("df", r.DF)
	case *analysis.ChiSquareResult:
		put("chi2", r.Chi2)
		put("p", r.P)
		rec.Summary["df"] = r.DF
	case *analysis.CorrelationResult:
		put("r", r.R)
		put("p", r.P)
		rec.Summary["n"] = r.N
	case *analysis.CovarianceResult:
		if len(r.Matrix) > 1 {
			put("cov", r.Between(0, 1))
		}
		rec.Summary["n"] = r.N
	}
	if len(a.Warnings) > 0 {
		rec.Summary["warnings"] = len(a.Warnings)
	}
}
