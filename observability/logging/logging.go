package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a structured JSON logger tagged with the component name. The
// deterministic contract core never logs; only wiring and host-facing code
// should use this.
func New(component string) *slog.Logger {
	return NewWithWriter(component, os.Stdout)
}

// NewWithWriter is New with an explicit destination, primarily for tests.
func NewWithWriter(component string, w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				return slog.Attr{Key: "timestamp", Value: attr.Value}
			}
			if attr.Key == slog.LevelKey {
				return slog.String("severity", strings.ToUpper(attr.Value.String()))
			}
			if attr.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: attr.Value}
			}
			return attr
		},
	})
	logger := slog.New(handler)
	if component = strings.TrimSpace(component); component != "" {
		logger = logger.With(slog.String("component", component))
	}
	return logger
}
