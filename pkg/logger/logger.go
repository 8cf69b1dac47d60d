package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger

// Init configures the package logger. Production gets JSON output, anything
// else gets text at debug level.
func Init(environment string) {
	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	log = slog.New(handler)
}

func l() *slog.Logger {
	if log == nil {
		Init("development")
	}
	return log
}

// normalize lets call sites pass a bare error as the only argument.
func normalize(args []any) []any {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			return []any{slog.Any("error", err)}
		}
	}
	return args
}

func Info(msg string, args ...any) {
	l().Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	l().Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	l().Error(msg, normalize(args)...)
}

func Fatal(msg string, args ...any) {
	l().Error(msg, normalize(args)...)
	os.Exit(1)
}
