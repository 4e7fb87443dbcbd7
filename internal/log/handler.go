package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// MaxAttrLen is the maximum length of a logged string attribute value.
// Longer values are truncated with a marker. Extracted page text can run
// to hundreds of kilobytes; a log line must never carry that much.
const MaxAttrLen = 256

// truncationMarker is appended to truncated attribute values.
const truncationMarker = "...(truncated)"

// CrawlHandler wraps an slog.Handler to keep crawl log output safe and
// readable. It masks userinfo embedded in URL-shaped attribute values and
// truncates values longer than MaxAttrLen.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay oblivious to the sanitization rules
type CrawlHandler struct {
	// handler is the underlying slog handler that receives rewritten records.
	handler slog.Handler
}

// NewCrawlHandler creates a new CrawlHandler wrapping the given handler.
// If handler is nil, the returned CrawlHandler uses slog.Default().Handler().
func NewCrawlHandler(handler slog.Handler) *CrawlHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CrawlHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CrawlHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it to the underlying
// handler.
func (h *CrawlHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})

	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are rewritten before being added.
func (h *CrawlHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewriteAttr(a)
	}
	return &CrawlHandler{handler: h.handler.WithAttrs(rewritten)}
}

// WithGroup returns a new handler with the given group name.
func (h *CrawlHandler) WithGroup(name string) slog.Handler {
	return &CrawlHandler{handler: h.handler.WithGroup(name)}
}

// rewriteAttr rewrites a single attribute, recursively handling groups.
func (h *CrawlHandler) rewriteAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			rewritten[i] = h.rewriteAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	val := a.Value.String()
	val = maskURLUserinfo(val)
	if len(val) > MaxAttrLen {
		val = val[:MaxAttrLen] + truncationMarker
	}

	return slog.String(a.Key, val)
}

// maskURLUserinfo strips credentials from a URL-shaped value.
// Non-URL values are returned unchanged.
func maskURLUserinfo(val string) string {
	if !strings.Contains(val, "://") || !strings.Contains(val, "@") {
		return val
	}

	u, err := url.Parse(val)
	if err != nil || u.User == nil {
		return val
	}

	u.User = url.User("xxxxx")
	return u.String()
}

// NewLogger creates a text-format slog.Logger for the crawler.
// Verbose mode lowers the level from Warn to Debug.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	return slog.New(NewCrawlHandler(slog.NewTextHandler(w, opts)))
}

// NewJSONLogger creates a JSON-format slog.Logger for the crawler.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	return slog.New(NewCrawlHandler(slog.NewJSONHandler(w, opts)))
}
