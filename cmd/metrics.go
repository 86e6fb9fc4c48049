package cmd

import (
	"context"
	"log/slog"

	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/metrics"
)

// withMetrics runs fn with a fresh metrics registry. The registry is served over HTTP
// while fn runs when mc.Listen is set and written to mc.Textfile afterwards.
func withMetrics(ctx context.Context, mc config.MetricsConfig, fn func(m *metrics.Metrics) error) error {
	m := metrics.New()

	if mc.Listen != "" {
		srv := metrics.NewServer(mc.Listen, mc.Path, m.Registry())
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop(context.Background())
	}

	err := fn(m)

	if mc.Textfile != "" {
		if werr := m.WriteTextfile(mc.Textfile); werr != nil {
			slog.Warn("failed to write metrics textfile", "path", mc.Textfile, "error", werr)
		}
	}
	return err
}
