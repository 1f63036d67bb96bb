package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// maxLevelWidth pads level names so console columns line up
const maxLevelWidth = 5

// NewSlogLogger creates a standalone JSON Logger writing to w (stdout when nil).
// Intended for tests and for components created before the central logger exists.
func NewSlogLogger(w io.Writer, level LogLevel, tz *time.Location) Logger {
	if w == nil {
		w = os.Stdout
	}
	if tz == nil {
		tz = time.Local
	}

	slogLevel := parseSlogLevel(level)
	return &moduleLogger{
		logger: slog.New(newJSONHandler(w, slogLevel, tz)),
		level:  slogLevel,
	}
}

// newTextHandler creates the human-readable console handler. Timestamps are dropped;
// time-valued attributes are rendered in tz.
func newTextHandler(w io.Writer, level slog.Level, tz *time.Location) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 {
				switch a.Key {
				case slog.TimeKey:
					return slog.Attr{}
				case slog.LevelKey:
					return slog.String(slog.LevelKey, padLevel(levelName(a.Value)))
				}
			}
			return localizeTime(a, tz)
		},
	})
}

// newJSONHandler creates the machine-readable file handler with RFC3339 timestamps in tz.
func newJSONHandler(w io.Writer, level slog.Level, tz *time.Location) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				return slog.String(slog.LevelKey, levelName(a.Value))
			}
			return localizeTime(a, tz)
		},
	})
}

func localizeTime(a slog.Attr, tz *time.Location) slog.Attr {
	if a.Value.Kind() == slog.KindTime && tz != nil {
		return slog.String(a.Key, a.Value.Time().In(tz).Format(time.RFC3339))
	}
	return a
}

// levelName maps the custom trace level to a readable name
func levelName(v slog.Value) string {
	if level, ok := v.Any().(slog.Level); ok && level <= traceLevelValue {
		return "TRACE"
	}
	return v.String()
}

func padLevel(level string) string {
	if len(level) >= maxLevelWidth {
		return level
	}
	return level + strings.Repeat(" ", maxLevelWidth-len(level))
}

// multiWriterHandler writes to multiple slog handlers
type multiWriterHandler struct {
	handlers []slog.Handler
}

func newMultiWriterHandler(handlers ...slog.Handler) slog.Handler {
	return &multiWriterHandler{handlers: handlers}
}

// Enabled returns true if any handler is enabled for the level
func (h *multiWriterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

//nolint:gocritic // slog.Handler interface requires record by value
func (h *multiWriterHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *multiWriterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiWriterHandler{handlers: newHandlers}
}

func (h *multiWriterHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiWriterHandler{handlers: newHandlers}
}
