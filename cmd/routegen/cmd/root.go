package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lexfrei/routegen/internal/config"
)

//nolint:gochecknoglobals // set by SetVersion from main
var (
	version = "development"
	gitsha  = "development"
)

func SetVersion(ver, sha string) {
	version = ver
	gitsha = sha
}

//nolint:gochecknoglobals // cobra command pattern
var rootCmd = &cobra.Command{
	Use:   "routegen",
	Short: "Route configuration generator for an Envoy-based API gateway",
	Long: `routegen reads an intermediate-representation snapshot of mapping groups
and emits the ordered HTTP route entries of an Envoy v2 route table, with
SNI-qualified routes kept apart for the listener configuration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String(config.KeyLogFormat, config.LogFormatJSON, "Log format (json, text)")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	config.BindEnv(viper.GetViper())
	config.SetDefaults(viper.GetViper())
}

func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return errors.Wrap(rootCmd.ExecuteContext(ctx), "command execution failed")
}

// setupLogger builds the process logger. Logs go to w, which is stderr for
// the commands since stdout may carry the generated configuration.
func setupLogger(opts config.LogOptions, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: opts.Level,
	}

	var handler slog.Handler
	if opts.Format == config.LogFormatText {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}

	return slog.New(handler)
}
