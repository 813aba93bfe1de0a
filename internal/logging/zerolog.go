package logging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rs/zerolog"
)

// NewZerolog returns a zerolog.Logger whose events are forwarded to logger,
// so components logging through zerolog share the slog pipeline.
func NewZerolog(logger *slog.Logger, component string) zerolog.Logger {
	return zerolog.New(&slogWriter{logger: logger}).With().Str("component", component).Logger()
}

type slogWriter struct {
	logger *slog.Logger
}

func (w *slogWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel decodes one zerolog JSON event and re-emits it as a slog record.
func (w *slogWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	var fields map[string]any
	if err := json.Unmarshal(p, &fields); err != nil {
		w.logger.Log(context.Background(), slogLevel(level), string(p))
		return len(p), nil
	}

	msg, _ := fields[zerolog.MessageFieldName].(string)
	delete(fields, zerolog.MessageFieldName)
	delete(fields, zerolog.LevelFieldName)
	delete(fields, zerolog.TimestampFieldName)

	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	w.logger.Log(context.Background(), slogLevel(level), msg, attrs...)
	return len(p), nil
}

func slogLevel(level zerolog.Level) slog.Level {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return slog.LevelDebug
	case zerolog.WarnLevel:
		return slog.LevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
