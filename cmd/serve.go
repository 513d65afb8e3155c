package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"statdash/adapters/memory"
	"statdash/adapters/postgres"
	"statdash/app"
	"statdash/internal"
	"statdash/internal/analysis"
	"statdash/internal/errors"
	"statdash/internal/metrics"
	"statdash/internal/migration"
	"statdash/internal/render"
	"statdash/internal/session"
	"statdash/ports"
	"statdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "dashboard port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

// initDatabase connects to PostgreSQL and runs migrations
func initDatabase(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	internal.DefaultLogger.Info("[Database] schema at version %s", migrator.Version())
	return db, nil
}

func serve(ctx context.Context) error {
	logger := internal.DefaultLogger
	defer logger.Sync()

	gin.SetMode(cfg.Server.GinMode)

	var runs ports.RunRepository
	checks := map[string]ui.HealthCheck{}
	if cfg.Database.URL != "" {
		db, err := initDatabase(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		runs = postgres.NewRunRepository(db)
		checks["database"] = db.PingContext
		logger.Info("[Serve] run history stored in PostgreSQL")
	} else {
		runs = memory.NewRunRepository(cfg.Sessions.HistoryLimit)
		logger.Info("[Serve] run history kept in memory (last %d runs)", cfg.Sessions.HistoryLimit)
	}

	m := metrics.New()
	svc := app.NewAnalysisService(
		session.NewStore(),
		analysis.NewEngine(logger),
		render.NewRenderer(),
		runs,
		m,
		app.ServiceOptions{
			MaxConcurrent: cfg.Sessions.MaxConcurrentAnalyses,
			MaxRows:       cfg.Data.MaxRows,
		},
		logger,
	)
	svc.StartSweeper(ctx, time.Minute, cfg.Sessions.IdleTimeout)

	srv, err := ui.NewServer(svc, ui.Options{
		MaxUploadBytes:  cfg.Data.MaxUploadBytes,
		DefaultEncoding: cfg.Data.DefaultEncoding,
		HistoryLimit:    cfg.Sessions.HistoryLimit,
	}, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx, ":"+cfg.Server.Port)
	})
	if cfg.Ops.Enabled {
		ops := &http.Server{
			Addr:              ":" + cfg.Ops.Port,
			Handler:           ui.NewOpsRouter(m, checks),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("[Ops] health, metrics and pprof on %s", ops.Addr)
			if err := ops.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return ops.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}
