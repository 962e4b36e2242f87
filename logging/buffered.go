package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// BufferedLogHandler is a slog.Handler that keeps records in memory as JSON
// lines. Tests install it to assert on what was logged:
//
//	h := logging.NewBufferedLogHandler(nil)
//	logging.SetLogger(slog.New(h))
//	defer logging.SetLogger(nil)
//	// ... parse ...
//	if !h.Contains("skipping junk") { ... }
type BufferedLogHandler struct {
	level  slog.Leveler
	state  *bufferState
	attrs  []slog.Attr
	groups []string
}

// bufferState is shared by a handler and everything derived from it with
// WithAttrs or WithGroup.
type bufferState struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewBufferedLogHandler creates an empty handler. A nil opts, or one without
// a Level, captures every level.
func NewBufferedLogHandler(opts *slog.HandlerOptions) *BufferedLogHandler {
	h := &BufferedLogHandler{state: &bufferState{}}
	if opts != nil {
		h.level = opts.Level
	}
	return h
}

func (h *BufferedLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.level == nil || level >= h.level.Level()
}

func (h *BufferedLogHandler) Handle(_ context.Context, r slog.Record) error {
	e := logEntry{
		Level:    r.Level.String(),
		Message:  r.Message,
		DateTime: r.Time.Format(time.DateTime),
	}
	for _, a := range h.attrs {
		e.Attrs = append(e.Attrs, h.qualify(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs = append(e.Attrs, h.qualify(a))
		return true
	})

	line, err := json.Marshal(e)
	if err != nil {
		return err
	}

	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.buf.Write(line)
	h.state.buf.WriteByte('\n')
	return nil
}

func (h *BufferedLogHandler) qualify(a slog.Attr) string {
	if len(h.groups) == 0 {
		return a.String()
	}
	return strings.Join(h.groups, ".") + "." + a.String()
}

func (h *BufferedLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.attrs = append(c.attrs, attrs...)
	return c
}

func (h *BufferedLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.groups = append(c.groups, name)
	return c
}

func (h *BufferedLogHandler) clone() *BufferedLogHandler {
	return &BufferedLogHandler{
		level:  h.level,
		state:  h.state,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

// String returns everything captured so far.
func (h *BufferedLogHandler) String() string {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return h.state.buf.String()
}

// Lines returns the captured records, one JSON document per element.
func (h *BufferedLogHandler) Lines() []string {
	s := strings.TrimSuffix(h.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Contains reports whether the captured output contains s.
func (h *BufferedLogHandler) Contains(s string) bool {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return bytes.Contains(h.state.buf.Bytes(), []byte(s))
}

// Reset discards everything captured.
func (h *BufferedLogHandler) Reset() {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.buf.Reset()
}

// Len returns the number of captured bytes.
func (h *BufferedLogHandler) Len() int {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return h.state.buf.Len()
}

type logEntry struct {
	Level    string   `json:"level"`
	Message  string   `json:"message"`
	DateTime string   `json:"datetime"`
	Attrs    []string `json:"attrs,omitempty"`
}
