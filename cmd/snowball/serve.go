package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/snowball/internal/logger"
	"github.com/kailas-cloud/snowball/internal/metrics"
	chiTransport "github.com/kailas-cloud/snowball/internal/transport/chi"
	extractionuc "github.com/kailas-cloud/snowball/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/snowball/internal/usecase/health"
)

var (
	serveFiles runOverrides
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the run once and serve tuple construction over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx, serveFiles)
		if err != nil {
			return err
		}
		defer a.close()

		if servePort > 0 {
			a.cfg.HTTP.Port = servePort
		}
		return serve(ctx, a)
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFiles.parameters, "parameters", "", "parameter file (overrides run.parameters)")
	f.StringVar(&serveFiles.seeds, "seeds", "", "positive seed file (overrides run.seeds)")
	f.StringVar(&serveFiles.negativeSeeds, "negative-seeds", "", "negative seed file (overrides run.negative_seeds)")
	f.StringVar(&serveFiles.sentences, "sentences", "", "annotated sentence file (overrides run.sentences)")
	f.IntVar(&servePort, "port", 0, "HTTP port (overrides http.port)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger

	// Pass a nil interface (not a typed nil pointer) when caching is off.
	var cachePinger healthuc.CachePinger
	if a.store != nil {
		cachePinger = a.store
	}

	extraction := extractionuc.New(a.cfg.Extraction.Workers).
		WithMetrics(metrics.TuplesBuiltTotal, metrics.TuplesDuplicateTotal, metrics.PatternsTotal)
	server := chiTransport.NewServer(a.run.Config, extraction, healthuc.New(cachePinger), logger).
		WithMaxBodyBytes(a.cfg.HTTP.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(a.cfg.HTTP.APIKeys, chiTransport.PublicPaths...))
	r.Use(metrics.Middleware("/metrics"))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx := logpkg.With(logpkg.ContextWithLogger(r.Context(), logger), zap.String("request_id", requestID))
			reqLogger := logpkg.FromContext(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
