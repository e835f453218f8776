// Package logger wraps zerolog with the component loggers used across the
// price engine.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger scoped to one component.
type Logger struct {
	zl zerolog.Logger
}

var (
	// Default is the root logger. It is created on first use when Init
	// has not been called.
	Default *Logger

	// mu guards Default against concurrent first use.
	mu sync.Mutex
)

func consoleWriter() io.Writer {
	return zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
}

// Init installs a console logger on stdout.
func Init() {
	InitWithWriter(consoleWriter())
}

// InitWithWriter installs a JSON logger writing to w.
func InitWithWriter(w io.Writer) {
	mu.Lock()
	l := install(w)
	mu.Unlock()
	l.Debug().Str("level", zerolog.GlobalLevel().String()).Msg("Logger initialized")
}

// install must be called with mu held.
func install(w io.Writer) *Logger {
	level := levelFromEnv()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	Default = &Logger{zl: zerolog.New(w).With().Timestamp().Logger()}
	return Default
}

// levelFromEnv reads LOG_LEVEL. Without it, production runs at info and
// everything else at debug.
func levelFromEnv() zerolog.Level {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		if os.Getenv("PRICE_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func root() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if Default == nil {
		return install(consoleWriter())
	}
	return Default
}

// WithField returns a child logger carrying key=value.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Debug logs a formatted message on the root logger.
func Debug(format string, v ...interface{}) { root().Debug().Msgf(format, v...) }

// Info logs a formatted message on the root logger.
func Info(format string, v ...interface{}) { root().Info().Msgf(format, v...) }

// Warn logs a formatted message on the root logger.
func Warn(format string, v ...interface{}) { root().Warn().Msgf(format, v...) }

// Error logs a formatted message on the root logger.
func Error(format string, v ...interface{}) { root().Error().Msgf(format, v...) }

// Fatal logs a formatted message on the root logger and exits.
func Fatal(format string, v ...interface{}) { root().Fatal().Msgf(format, v...) }

// IsDebugEnabled reports whether debug events are emitted.
func IsDebugEnabled() bool {
	return zerolog.GlobalLevel() <= zerolog.DebugLevel
}

func component(name string) zerolog.Context {
	return root().zl.With().Str("component", name)
}

// ForScraper returns the logger for one fetch tier.
func ForScraper(tier string) *Logger {
	return &Logger{zl: component("scraper").Str("tier", tier).Logger()}
}

// ForBrowser returns the logger for the rendering session.
func ForBrowser() *Logger { return &Logger{zl: component("browser").Logger()} }

// ForWorker returns the batch orchestrator logger.
func ForWorker() *Logger { return &Logger{zl: component("worker").Logger()} }

// ForPublisher returns the result publisher logger.
func ForPublisher() *Logger { return &Logger{zl: component("publisher").Logger()} }

// ForCache returns the host block cache logger.
func ForCache() *Logger { return &Logger{zl: component("cache").Logger()} }
