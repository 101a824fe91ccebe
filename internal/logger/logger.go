package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Level aliases
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var globalLogger *slog.Logger
var isTerminal = term.IsTerminal

var sensitiveKeys = map[string]bool{
	"api_key":       true,
	"authorization": true,
	"password":      true,
	"secret":        true,
	"token":         true,
}

var sensitiveKeySubstrings = []string{
	"token",
	"secret",
	"password",
	"passwd",
	"authorization",
}

var sensitiveValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*\b`),
	regexp.MustCompile(`(?i)\b(password|passwd|access[_-]?token|secret)\b\s*[:=]\s*\S+`),
}

// pathKeys hold file system locations. Their values are logged verbatim so a
// failure always names the file, even when a file name looks like "secret: x".
var pathKeys = map[string]bool{
	"path":       true,
	"target":     true,
	"executable": true,
	"root":       true,
	"backup":     true,
}

// RedactAttr is a slog.ReplaceAttr function that redacts credentials that may
// end up in logged command lines or paths.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if shouldRedact(a) {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}

func shouldRedact(a slog.Attr) bool {
	key := strings.ToLower(a.Key)
	if sensitiveKeys[key] {
		return true
	}
	for _, sub := range sensitiveKeySubstrings {
		if strings.Contains(key, sub) {
			return true
		}
	}

	if pathKeys[key] {
		return false
	}

	var value string
	switch a.Value.Kind() {
	case slog.KindString:
		value = a.Value.String()
	default:
		value = fmt.Sprint(a.Value.Any())
	}
	if value == "" {
		return false
	}
	for _, re := range sensitiveValuePatterns {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

func init() {
	Init(LevelInfo, nil)
}

// Init initializes the global logger.
// level sets the minimum level to log.
// logFile is an optional writer for JSONL output (e.g., an os.File).
func Init(level slog.Level, logFile io.Writer) {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: RedactAttr,
	}

	useColor := logFile == nil && isTerminal(int(os.Stderr.Fd()))
	var handler slog.Handler = NewConsoleHandler(os.Stderr, opts, useColor)

	if logFile != nil {
		handler = &fanoutHandler{
			handlers: []slog.Handler{handler, slog.NewJSONHandler(logFile, opts)},
		}
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

func Debug(msg string, args ...any) { globalLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { globalLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { globalLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { globalLogger.Error(msg, args...) }

// ConsoleHandler writes one tab separated line per record:
// time, level, message, then key=value attributes.
type ConsoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	opts   *slog.HandlerOptions
	prefix string
	groups []string
	color  bool
}

func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *ConsoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ConsoleHandler{mu: &sync.Mutex{}, w: w, opts: opts, color: color}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\033[90m",
	slog.LevelInfo:  "\033[32m",
	slog.LevelWarn:  "\033[33m",
	slog.LevelError: "\033[31m",
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format("15:04:05"))
	b.WriteByte('\t')
	if h.color {
		fmt.Fprintf(&b, "%s%-5s\033[0m", levelColors[r.Level], r.Level.String())
	} else {
		fmt.Fprintf(&b, "%-5s", r.Level.String())
	}
	b.WriteByte('\t')
	b.WriteString(r.Message)
	b.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(h.formatAttr(a, h.groups))
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *ConsoleHandler) formatAttr(a slog.Attr, groups []string) string {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(groups, a)
	}
	if a.Key == "" {
		return ""
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	if h.color {
		return fmt.Sprintf(" \033[90m%s=\033[0m%v", key, a.Value)
	}
	return fmt.Sprintf(" %s=%v", key, a.Value)
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		b.WriteString(h.formatAttr(a, h.groups))
	}
	h2.prefix = b.String()
	return &h2
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(h2.groups[:len(h2.groups):len(h2.groups)], name)
	return &h2
}

type fanoutHandler struct {
	handlers []slog.Handler
}

func (m *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: handlers}
}

func (m *fanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: handlers}
}
