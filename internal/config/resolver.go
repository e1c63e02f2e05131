// Package config resolves command options from flags, environment variables
// and defaults.
package config

import (
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/lexfrei/routegen/internal/envoy"
)

// EnvPrefix prefixes every environment variable the commands read.
const EnvPrefix = "ROUTEGEN"

// Option keys, shared by flags, environment variables and defaults.
const (
	KeyInput       = "input"
	KeyOutput      = "output"
	KeyFormat      = "format"
	KeyMetricsFile = "metrics-file"
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
	KeyCurrent     = "current"
	KeyDesired     = "desired"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// ErrInvalidOption marks an option value that cannot be used.
var ErrInvalidOption = errors.New("invalid option")

// Options are the resolved options of the generate command.
type Options struct {
	// Input is the snapshot path.
	Input string

	// Output is the route configuration path. Empty means stdout.
	Output string

	// Format is the output format, envoy.FormatJSON or envoy.FormatYAML.
	Format string

	// MetricsFile is where metrics are written in text exposition format.
	// Empty disables the metrics file.
	MetricsFile string

	Log LogOptions
}

// LogOptions configure the process logger.
type LogOptions struct {
	Level  slog.Level
	Format string
}

// DiffOptions are the resolved options of the diff command.
type DiffOptions struct {
	Current string
	Desired string

	Log LogOptions
}

// SetDefaults registers the default of every option on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyFormat, envoy.FormatJSON)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, LogFormatJSON)
}

// BindEnv makes v read ROUTEGEN_* environment variables. Dashes in keys map
// to underscores, so "metrics-file" is read from ROUTEGEN_METRICS_FILE.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Resolve validates and returns the options of the generate command.
func Resolve(v *viper.Viper) (*Options, error) {
	input := v.GetString(KeyInput)
	if input == "" {
		return nil, errors.Mark(errors.New("input is required (use --input or ROUTEGEN_INPUT)"), ErrInvalidOption)
	}

	format := strings.ToLower(v.GetString(KeyFormat))
	if format != envoy.FormatJSON && format != envoy.FormatYAML {
		return nil, errors.Mark(
			errors.Newf("unsupported format %q (expected %s or %s)", format, envoy.FormatJSON, envoy.FormatYAML),
			ErrInvalidOption,
		)
	}

	logOpts, err := ResolveLog(v)
	if err != nil {
		return nil, err
	}

	return &Options{
		Input:       input,
		Output:      v.GetString(KeyOutput),
		Format:      format,
		MetricsFile: v.GetString(KeyMetricsFile),
		Log:         logOpts,
	}, nil
}

// ResolveDiff validates and returns the options of the diff command.
func ResolveDiff(v *viper.Viper) (*DiffOptions, error) {
	current := v.GetString(KeyCurrent)
	desired := v.GetString(KeyDesired)

	if current == "" || desired == "" {
		return nil, errors.Mark(errors.New("both current and desired are required"), ErrInvalidOption)
	}

	logOpts, err := ResolveLog(v)
	if err != nil {
		return nil, err
	}

	return &DiffOptions{
		Current: current,
		Desired: desired,
		Log:     logOpts,
	}, nil
}

// ResolveLog validates and returns the logger options alone.
func ResolveLog(v *viper.Viper) (LogOptions, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(v.GetString(KeyLogLevel)))
	if err != nil {
		return LogOptions{}, errors.Mark(
			errors.Wrapf(err, "invalid log level %q", v.GetString(KeyLogLevel)),
			ErrInvalidOption,
		)
	}

	format := strings.ToLower(v.GetString(KeyLogFormat))
	if format != LogFormatJSON && format != LogFormatText {
		return LogOptions{}, errors.Mark(
			errors.Newf("unsupported log format %q (expected %s or %s)", format, LogFormatJSON, LogFormatText),
			ErrInvalidOption,
		)
	}

	return LogOptions{Level: level, Format: format}, nil
}
