package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Logger holds CLI flags for logging configuration
type Logger struct {
	level  string
	format string
	output string
}

// Flags returns CLI flags for logger configuration
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Aliases:     []string{"l"},
			Usage:       "Log level [debug|info|warn|error]",
			Value:       "info",
			Sources:     cli.EnvVars("CRUCIBLE_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format [console|json]",
			Value:       string(logging.FormatConsole),
			Sources:     cli.EnvVars("CRUCIBLE_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output [stderr|stdout|<file path>]",
			Value:       "stderr",
			Sources:     cli.EnvVars("CRUCIBLE_LOG_OUTPUT"),
			Destination: &l.output,
		},
	}
}

// LogValue implements slog.LogValuer
func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.level),
		slog.String("format", l.format),
		slog.String("output", l.output),
	)
}

// Configure installs the process-wide logger and returns a closer for the
// log output. The closer is never nil on success.
func (l *Logger) Configure() (func(), error) {
	level, err := parseLogLevel(l.level)
	if err != nil {
		return nil, err
	}

	var w io.Writer
	closer := func() {}
	switch l.output {
	case "", "stderr":
		w = os.Stderr
	case "stdout", "-":
		w = os.Stdout
	default:
		// #nosec G304 - path is expected to be provided by CLI argument
		f, err := os.OpenFile(l.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.output))
		}
		w = f
		closer = func() {
			if err := f.Close(); err != nil {
				logging.Default().Error("failed to close log file", "error", err)
			}
		}
	}

	format := logging.Format(l.format)
	if format == "" {
		format = logging.FormatConsole
	}

	logger, err := logging.New(w, level, format)
	if err != nil {
		closer()
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to build logger",
			goerr.V("format", l.format), goerr.V("cause", err.Error()))
	}
	logging.SetDefault(logger)

	return closer, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, goerr.Wrap(ErrInvalidConfig, "invalid log level", goerr.V("level", s))
	}
}
