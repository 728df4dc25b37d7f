package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/clinic-admin/backend"
	"github.com/ariebrainware/clinic-admin/config"
	"github.com/ariebrainware/clinic-admin/endpoint"
	"github.com/ariebrainware/clinic-admin/roster"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

// rosterStack is the backend client with the roster machinery built on it.
type rosterStack struct {
	client  *backend.Client
	queue   *roster.Queue
	service *roster.Service
	audit   *roster.Audit
}

func newRosterStack(cfg *config.Config) *rosterStack {
	client := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	queue := roster.NewQueue(client, roster.QueueConfig{
		Workers: cfg.RepairWorkers,
		Size:    cfg.RepairQueueSize,
		Timeout: cfg.RepairTimeout,
	})
	service := roster.NewService(client, queue)
	return &rosterStack{
		client:  client,
		queue:   queue,
		service: service,
		audit:   roster.NewAudit(client, service, cfg.AuditConcurrency),
	}
}

func mailerFor(cfg *config.Config) util.Mailer {
	if m := util.NewSMTPMailer(cfg); m != nil {
		return m
	}
	return nil
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg := config.LoadConfig()
	logger := util.Logger()

	db, err := config.ConnectMySQL()
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := migrateSchema(db); err != nil {
		return err
	}
	util.SetSecurityLoggerDB(db)

	if _, err := config.ConnectRedis(); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, sessions and guards fall back to local state")
	}

	stack := newRosterStack(cfg)
	scheduler := roster.NewScheduler()
	if _, err := stack.audit.Schedule(scheduler, cfg.RosterAuditSchedule); err != nil {
		stack.queue.Close()
		return err
	}
	scheduler.Start()

	gin.SetMode(cfg.GinMode)
	router := endpoint.NewRouter(endpoint.Deps{
		DB:          db,
		Backend:     stack.client,
		Roster:      stack.service,
		Repairs:     stack.queue,
		Mailer:      mailerFor(cfg),
		ClinicName:  cfg.AppName,
		CORSOrigins: cfg.CORSOrigins,
	})
	srv := newHTTPServer(cfg, router)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("backend", cfg.BackendURL).Msg("starting clinic-admin server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down server")
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	<-scheduler.Stop().Done()
	stack.queue.Close()

	stats := stack.queue.Stats()
	logger.Info().
		Int64("repairs_succeeded", stats.Succeeded).
		Int64("repairs_failed", stats.Failed).
		Int64("repairs_dropped", stats.Dropped).
		Msg("server exited")
	return runErr
}
