//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Console is the host's message window.
type Console interface {
	// Post prints a message.
	Post(msg string)

	// Error prints an error.
	Error(msg string)

	// Alert shows a modal alert.
	Alert(msg string)
}

// writerConsole prints to a writer. It is used when no host is available.
type writerConsole struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *writerConsole) print(prefix, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s%s\n", prefix, msg)
}

func (c *writerConsole) Post(msg string)  { c.print("", msg) }
func (c *writerConsole) Error(msg string) { c.print("error: ", msg) }
func (c *writerConsole) Alert(msg string) { c.print("alert: ", msg) }

var stderrConsole Console = &writerConsole{w: os.Stderr}

// ConsoleHandler implements slog.Handler by printing records to a Console.
// Records at error level go to the error channel; everything else is posted.
type ConsoleHandler struct {
	console Console
	opts    handlerConfig
	prefix  string
	attrs   []slog.Attr
	groups  []string
}

// HandlerOption configures a ConsoleHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level  slog.Leveler
	prefix string
}

// WithLevel sets the minimum level to print.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithPrefix prepends a fixed string, usually the class name, to every
// message.
func WithPrefix(prefix string) HandlerOption {
	return func(c *handlerConfig) {
		c.prefix = prefix
	}
}

// NewConsoleHandler creates a handler printing to console.
func NewConsoleHandler(console Console, opts ...HandlerOption) *ConsoleHandler {
	cfg := handlerConfig{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ConsoleHandler{console: console, opts: cfg, prefix: cfg.prefix}
}

// Enabled reports whether the handler prints records at level.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle renders the record as "msg key=value ..." and prints it.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if h.prefix != "" {
		b.WriteString(h.prefix)
		b.WriteString(": ")
	}
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	group := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, group, a)
		return true
	})

	if r.Level >= slog.LevelError {
		h.console.Error(b.String())
	} else {
		h.console.Post(b.String())
	}
	return nil
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if group != "" {
		key = group + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	v := a.Value.String()
	if strings.ContainsAny(v, " =\"") {
		v = fmt.Sprintf("%q", v)
	}
	b.WriteString(v)
}

// WithAttrs returns a handler that prints attrs with every record.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	group := strings.Join(h.groups, ".")
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		if group != "" {
			a.Key = group + "." + a.Key
		}
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.groups = append(append([]string(nil), h.groups...), name)
	return &nh
}
