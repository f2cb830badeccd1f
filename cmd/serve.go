package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/accident-risk/internal/api"
	"github.com/sells-group/accident-risk/internal/artifact"
	"github.com/sells-group/accident-risk/internal/config"
	"github.com/sells-group/accident-risk/internal/lookup"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lookup API server",
	Long:  "Loads the derived artifacts once and serves location risk lookups until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		bundle, err := artifact.Load(ctx, cfg.Artifacts.Dir)
		if err != nil {
			return eris.Wrap(err, "serve: load artifacts")
		}

		srv, err := newServer(bundle, cfg.Server)
		if err != nil {
			return err
		}
		logStartupBanner(bundle, cfg.Server.Port)

		// Graceful shutdown
		shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSecs) * time.Second
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// newServer builds the HTTP server for a loaded bundle.
func newServer(bundle *artifact.Bundle, sc config.ServerConfig) (*http.Server, error) {
	svc, err := lookup.New(bundle)
	if err != nil {
		return nil, eris.Wrap(err, "serve: build lookup service")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := api.NewRouter(svc, api.NewMetrics(reg), api.Options{
		AllowedOrigins: sc.AllowedOrigins,
		RateLimit:      sc.RateLimit,
		RateBurst:      sc.RateBurst,
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", sc.Port),
		Handler:           handler,
		ReadTimeout:       time.Duration(sc.ReadTimeoutSecs) * time.Second,
		ReadHeaderTimeout: time.Duration(sc.ReadTimeoutSecs) * time.Second,
		WriteTimeout:      time.Duration(sc.WriteTimeoutSecs) * time.Second,
	}, nil
}

func logStartupBanner(b *artifact.Bundle, port int) {
	zap.L().Info("accident prediction API server starting",
		zap.String("model_type", b.Metadata.ModelType),
		zap.Float64("model_accuracy", b.Metadata.Accuracy),
		zap.Int("training_samples", b.Metadata.TrainingSamples),
		zap.Int("test_samples", b.Metadata.TestSamples),
		zap.Int("total_places", b.Table.TotalPlaces),
		zap.Int("locations", b.Table.Statistics.Len()),
		zap.Int("accident_prone_areas", len(b.Table.Places)),
		zap.Int("port", port),
	)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
