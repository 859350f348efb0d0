package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/backend"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/operation"
	"github.com/spf13/cobra"
)

// maxBodyBytes bounds a request body read by the local server
const maxBodyBytes = 1 << 20

func newServeCmd(logger func(io.Writer) *slog.Logger) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the backend routes over a local HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger(cmd.ErrOrStderr())
			core := backend.New(operation.NewService(), log)
			return runServer(cmd.Context(), newServer(addr, newRouter(core, log)), log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	return cmd
}

// newRouter exposes the backend routes. Unmatched paths and methods are still
// passed to the backend so the not-found body is the same everywhere.
func newRouter(core *backend.Backend, logger *slog.Logger) http.Handler {
	serve := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}

		resp, _ := core.Handle(r.Context(), backend.Request{
			RequestID: middleware.GetReqID(r.Context()),
			Path:      r.URL.Path,
			Method:    r.Method,
			Body:      body,
		})
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.WriteString(w, resp.Body); err != nil {
			logger.WarnContext(r.Context(), "Failed to write response", slog.String("error", err.Error()))
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, op := range operation.All {
		r.Method(op.Method(), op.Path(), http.HandlerFunc(serve))
	}
	r.NotFound(serve)
	r.MethodNotAllowed(serve)
	return r
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func runServer(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
