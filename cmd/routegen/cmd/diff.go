package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lexfrei/routegen/internal/config"
	"github.com/lexfrei/routegen/internal/envoy"
)

//nolint:gochecknoglobals // cobra command pattern
var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two generated route configurations",
	Long: `Diff prints the routes that were added ("+") and removed ("-") between
two generated route configurations, for both the route table and the SNI
routes. A change that only reorders routes is reported too, since the data
plane uses the first matching route.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := config.ResolveDiff(viper.GetViper())
		if err != nil {
			return err
		}

		logger := setupLogger(opts.Log, cmd.ErrOrStderr())
		slog.SetDefault(logger)

		return runDiff(cmd.Context(), opts, logger, cmd.OutOrStdout())
	},
}

func init() {
	diffCmd.Flags().String(config.KeyCurrent, "", "Route configuration currently applied")
	diffCmd.Flags().String(config.KeyDesired, "", "Newly generated route configuration")

	_ = viper.BindPFlags(diffCmd.Flags())

	rootCmd.AddCommand(diffCmd)
}

func runDiff(_ context.Context, opts *config.DiffOptions, logger *slog.Logger, stdout io.Writer) error {
	current, err := readDocument(opts.Current)
	if err != nil {
		return err
	}

	desired, err := readDocument(opts.Desired)
	if err != nil {
		return err
	}

	routesChanged, err := printDiff(stdout, "routes", current.Routes, desired.Routes)
	if err != nil {
		return err
	}

	sniChanged, err := printDiff(stdout, "sni_routes", current.SNIRoutes, desired.SNIRoutes)
	if err != nil {
		return err
	}

	logger.Info("route configuration compared",
		"current", opts.Current,
		"desired", opts.Desired,
		"routes_changed", routesChanged,
		"sni_routes_changed", sniChanged,
	)

	return nil
}

func readDocument(path string) (*envoy.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	doc, err := envoy.ParseDocument(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	return doc, nil
}

// printDiff writes the difference of one route list and reports whether the
// lists differ in content or order.
func printDiff(w io.Writer, section string, current, desired []json.RawMessage) (bool, error) {
	toAdd, toRemove, err := envoy.DiffRoutes(current, desired)
	if err != nil {
		return false, errors.Wrapf(err, "failed to compare %s", section)
	}

	same, err := envoy.SameOrder(current, desired)
	if err != nil {
		return false, errors.Wrapf(err, "failed to compare %s", section)
	}

	if same {
		return false, nil
	}

	fmt.Fprintf(w, "%s:\n", section)

	for _, route := range toRemove {
		fmt.Fprintf(w, "- %s\n", compact(route))
	}

	for _, route := range toAdd {
		fmt.Fprintf(w, "+ %s\n", compact(route))
	}

	if len(toAdd) == 0 && len(toRemove) == 0 {
		fmt.Fprintln(w, "~ order changed")
	}

	return true, nil
}

// compact renders a route on one line. Routes were validated by DiffRoutes.
func compact(route json.RawMessage) string {
	var buf bytes.Buffer

	err := json.Compact(&buf, route)
	if err != nil {
		return string(route)
	}

	return buf.String()
}
