// Package log holds the logger shared by every package of the module.
//
// Records below Warn are only written when they carry a "section" attribute, given either
// on the record or through Logger.With, that matches one of the enabled sections.
package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/cottand/datashape/shape"
	"github.com/hashicorp/go-set/v3"
)

const sectionKey = "section"

var defaultSections = []string{"unify", "parser", "cmd"}

var (
	level    = new(slog.LevelVar)
	sections atomic.Pointer[set.Set[string]]
)

var handlerOptions = &slog.HandlerOptions{
	AddSource: true,
	Level:     level,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	},
}

var DefaultLogger = slog.New(shape.SlogHandler(&sectionHandler{underlying: slog.NewTextHandler(os.Stderr, handlerOptions)}))

func init() {
	level.Set(slog.LevelWarn)
	SetSections(defaultSections...)
}

// SetLevel changes the level of DefaultLogger and of every logger derived from it.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetSections replaces the enabled sections. A section is enabled when it starts with one
// of names. Blank names are ignored, and without any name the default sections are restored.
func SetSections(names ...string) {
	enabled := set.New[string](len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			enabled.Insert(name)
		}
	}
	if enabled.Empty() {
		enabled.InsertSlice(defaultSections)
	}
	sections.Store(enabled)
}

func isEnabled(section string) bool {
	if section == "" {
		return false
	}
	for prefix := range sections.Load().Items() {
		if strings.HasPrefix(section, prefix) {
			return true
		}
	}
	return false
}

var _ slog.Handler = &sectionHandler{}

// sectionHandler drops records below Warn whose section is not enabled. section is the
// one attached through WithAttrs, a section attribute on the record takes precedence.
type sectionHandler struct {
	underlying slog.Handler
	section    string
}

func (h *sectionHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.underlying.Enabled(ctx, l)
}

func (h *sectionHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		return h.underlying.Handle(ctx, record)
	}
	section := h.section
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == sectionKey {
			section = attr.Value.String()
			return false
		}
		return true
	})
	if !isEnabled(section) {
		return nil
	}
	return h.underlying.Handle(ctx, record)
}

func (h *sectionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	section := h.section
	for _, attr := range attrs {
		if attr.Key == sectionKey {
			section = attr.Value.String()
		}
	}
	return &sectionHandler{underlying: h.underlying.WithAttrs(attrs), section: section}
}

func (h *sectionHandler) WithGroup(name string) slog.Handler {
	return &sectionHandler{underlying: h.underlying.WithGroup(name), section: h.section}
}
