package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lexfrei/routegen/internal/config"
	"github.com/lexfrei/routegen/internal/envoy"
	"github.com/lexfrei/routegen/internal/ir"
	"github.com/lexfrei/routegen/internal/metrics"
	"github.com/lexfrei/routegen/internal/routegen"
)

//nolint:gochecknoglobals // cobra command pattern
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate route configuration from an IR snapshot",
	Long: `Generate reads an IR snapshot (YAML or JSON) and writes the route
configuration. Input that cannot be represented is reported in the log as
"route configuration partially applied"; a snapshot that breaks its contract
fails the command and nothing is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := config.Resolve(viper.GetViper())
		if err != nil {
			return err
		}

		logger := setupLogger(opts.Log, cmd.ErrOrStderr())
		slog.SetDefault(logger)

		return runGenerate(cmd.Context(), opts, logger, cmd.OutOrStdout())
	},
}

func init() {
	generateCmd.Flags().StringP(config.KeyInput, "i", "", "IR snapshot file (YAML or JSON)")
	generateCmd.Flags().StringP(config.KeyOutput, "o", "", "Output file (default stdout)")
	generateCmd.Flags().StringP(config.KeyFormat, "f", envoy.FormatJSON, "Output format (json, yaml)")
	generateCmd.Flags().String(config.KeyMetricsFile, "", "Write metrics in text exposition format to this file")

	_ = viper.BindPFlags(generateCmd.Flags())

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(ctx context.Context, opts *config.Options, logger *slog.Logger, stdout io.Writer) (err error) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	if opts.MetricsFile != "" {
		defer func() {
			writeErr := prometheus.WriteToTextfile(opts.MetricsFile, registry)
			if writeErr != nil {
				logger.Error("failed to write metrics file",
					"path", opts.MetricsFile,
					"error", writeErr,
				)
			}
		}()
	}

	defer func() {
		if err != nil {
			collector.RecordGenerateError(ctx, metrics.ClassifyGenerateError(err))
		}
	}()

	startTime := time.Now()

	snapshot, err := ir.Load(opts.Input)
	if err != nil {
		return errors.Wrap(err, "failed to load snapshot")
	}

	generator := routegen.NewGenerator(nil, collector, logger)

	result, err := generator.Generate(ctx, snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to generate route configuration")
	}

	for _, notice := range result.Notices {
		logger.Info("route configuration partially applied",
			"group", notice.GroupID,
			"reason", notice.Reason,
			"count", notice.Count,
			"detail", notice.Detail,
		)
	}

	var buf bytes.Buffer

	err = envoy.Encode(&buf, result.Config, opts.Format)
	if err != nil {
		return errors.Wrap(err, "failed to encode route configuration")
	}

	err = writeOutput(opts.Output, buf.Bytes(), stdout)
	if err != nil {
		return err
	}

	logger.Info("route configuration generated",
		"input", opts.Input,
		"routes", len(result.Config.Routes),
		"sni_routes", len(result.Config.SNIRoutes),
		"notices", len(result.Notices),
		"duration", time.Since(startTime),
	)

	return nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(data)
		if err != nil {
			return errors.Wrap(err, "failed to write route configuration")
		}

		return nil
	}

	err := os.WriteFile(path, data, 0o644) //nolint:gosec,mnd // configuration is not secret
	if err != nil {
		return errors.Wrapf(err, "failed to write route configuration to %s", path)
	}

	return nil
}
