package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/lagcorr/pkg/config"
)

// New creates the root zerolog logger from config.
// ⭐ SSOT: zerolog 인스턴스는 여기서만 생성. 각 패키지는
// log.With().Str("component", ...) 로 자식 로거를 만들어 쓴다.
func New(cfg *config.Config) zerolog.Logger {
	var output io.Writer
	if cfg.LogFormat == "console" || cfg.LogFormat == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	} else {
		// JSON output (default)
		output = os.Stdout
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))

	return zerolog.New(output).
		With().
		Timestamp().
		Str("env", cfg.Env).
		Logger()
}

// Nop returns a disabled logger for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// parseLevel converts a string log level to zerolog.Level
func parseLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
