package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentops/creator-sync/internal/model"
	"github.com/talentops/creator-sync/internal/syncer"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trigger/status HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		provider, err := buildProvider(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "serve: open source")
		}
		defer provider.Close() //nolint:errcheck

		s := buildSyncer(provider, cfg)
		srv := newSyncServer(ctx, s.Run)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.routes(),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// syncServer exposes the trigger and status endpoints over a single-slot
// run state: triggers are fire-and-forget and rejected while a run is
// active.
type syncServer struct {
	// baseCtx outlives individual requests so a triggered run is not
	// cancelled when the client disconnects.
	baseCtx context.Context
	state   *syncer.State
	run     func(ctx context.Context) (model.RunSummary, error)
}

func newSyncServer(baseCtx context.Context, run func(ctx context.Context) (model.RunSummary, error)) *syncServer {
	return &syncServer{baseCtx: baseCtx, state: syncer.NewState(), run: run}
}

func (s *syncServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/sync/trigger", s.handleTrigger)
	r.Get("/api/sync/status", s.handleStatus)

	return r
}

func (s *syncServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *syncServer) handleTrigger(w http.ResponseWriter, _ *http.Request) {
	if !s.state.TryStart() {
		writeJSON(w, http.StatusConflict, map[string]string{"status": "already_running"})
		return
	}

	go func() {
		summary, err := s.run(s.baseCtx)
		s.state.Finish(summary, err)
		if err != nil {
			zap.L().Error("sync run failed", zap.Error(err))
			return
		}
		zap.L().Info("sync run complete",
			zap.Int("phones", summary.Phones),
			zap.Int("ok", summary.OK),
			zap.Int("fail", summary.Fail),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *syncServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
