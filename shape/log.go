package shape

import (
	"context"
	"log/slog"
)

// slogTerm wraps a Term as a slog.LogValuer so that it is only rendered
// when the record is actually handled
func slogTerm(t Term) slog.LogValuer   { return termLogValuer{t} }
func slogShape(s Shape) slog.LogValuer { return shapeLogValuer{s} }

type termLogValuer struct{ Term }
type shapeLogValuer struct{ Shape }

func (l termLogValuer) LogValue() slog.Value  { return slog.StringValue(l.Term.String()) }
func (l shapeLogValuer) LogValue() slog.Value { return slog.StringValue(l.Shape.String()) }

// SlogHandler is a slog.Handler capable of lazy-printing terms and shapes
func SlogHandler(underlying slog.Handler) slog.Handler {
	return &termLogHandler{underlying: underlying}
}

type termLogHandler struct {
	underlying slog.Handler
}

func (l *termLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *termLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(wrapAttr(attr))
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *termLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = wrapAttr(attr)
	}
	return SlogHandler(l.underlying.WithAttrs(wrapped))
}

func (l *termLogHandler) WithGroup(name string) slog.Handler {
	return SlogHandler(l.underlying.WithGroup(name))
}

func wrapAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	switch value := attr.Value.Any().(type) {
	case Term:
		attr.Value = slog.AnyValue(slogTerm(value))
	case Shape:
		attr.Value = slog.AnyValue(slogShape(value))
	}
	return attr
}
