package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var metricsAddrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve cache metrics and a health check for a long-lived agent process",
	Long: `serve starts an HTTP server exposing /metrics (the
geniecache_fetch_total, geniecache_download_total, geniecache_eviction_total
and geniecache_lock_wait_seconds series described in SPEC_FULL.md) and
/healthz, for an agent process that keeps a cache.Engine alive across
many Get calls and wants it scraped by the cluster's existing
Prometheus setup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		router := chi.NewRouter()
		router.Use(middleware.RequestID)
		router.Use(middleware.Recoverer)
		router.Use(zapRequestLogger(logger))

		router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		router.Handle("/metrics", promhttp.Handler())

		logger.Info("geniecache serve listening", zap.String("addr", metricsAddrFlag))
		return http.ListenAndServe(metricsAddrFlag, router)
	},
}

func init() {
	serveCmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", ":9090", "address to serve /metrics and /healthz on")
}

// zapRequestLogger mirrors the reference backend's chi logging
// middleware (interfaces/http/rest/middleware/logging.go), swapped
// onto this CLI's own *zap.Logger instance instead of a package-level
// global.
func zapRequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			)
		})
	}
}
