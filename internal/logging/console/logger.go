// Package console writes diagnostics as single human readable lines:
//
//	15:09:26.535 INFO  [privateplot.publish] publish.file.completed file_path=a.md attempt=1
//
// The CLI enables it with --verbose; operator output lives in internal/terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "INFO"
}

// ParseLevel maps a configuration string onto a Level. Unknown values fall
// back to LevelInfo and report false.
func ParseLevel(value string) (Level, bool) {
	switch v := strings.ToUpper(strings.TrimSpace(value)); v {
	case "":
		return LevelInfo, true
	case "WARNING":
		return LevelWarn, true
	default:
		if idx := slices.Index(levelNames[:], v); idx >= 0 {
			return Level(idx), true
		}
		return LevelInfo, false
	}
}

var (
	levelColors = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Faint(true),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		LevelFatal: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Underline(true),
	}
	nameStyle = lipgloss.NewStyle().Faint(true)
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// Options configures the provider. Output goes to stderr unless Writer is set.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel *Level
	// Styled colours the output. Leave false when the writer is not a terminal.
	Styled bool
}

type sink struct {
	mu     sync.Mutex
	out    io.Writer
	now    func() time.Time
	min    Level
	styled bool
}

// NewProvider constructs a console provider with a default minimum of INFO.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{out: opts.Writer, now: opts.TimeFunc, min: LevelInfo, styled: opts.Styled}
	if s.out == nil {
		s.out = os.Stderr
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.MinLevel != nil {
		s.min = *opts.MinLevel
	}
	return s
}

func (s *sink) GetLogger(name string) interfaces.Logger {
	return &consoleLogger{sink: s, name: name}
}

func (s *sink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, line)
}

type consoleLogger struct {
	sink   *sink
	name   string
	fields map[string]any
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*consoleLogger)(nil)
	_ interfaces.FieldsLogger = (*consoleLogger)(nil)
)

func (l *consoleLogger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args) }
func (l *consoleLogger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }
func (l *consoleLogger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args) }
func (l *consoleLogger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args) }
func (l *consoleLogger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }
func (l *consoleLogger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args) }

func (l *consoleLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	next := *l
	next.fields = maps.Clone(l.fields)
	if next.fields == nil {
		next.fields = make(map[string]any, len(fields))
	}
	maps.Copy(next.fields, fields)
	return &next
}

func (l *consoleLogger) WithContext(ctx context.Context) interfaces.Logger {
	next := *l
	next.ctx = ctx
	return &next
}

func (l *consoleLogger) log(level Level, msg string, args []any) {
	if l.sink == nil || level < l.sink.min {
		return
	}
	fields := map[string]any{}
	maps.Copy(fields, l.fields)
	maps.Copy(fields, logging.ContextFields(l.ctx))
	addArgs(fields, args)
	// The module field repeats the logger name for named module loggers.
	if module, ok := fields["module"].(string); ok && module == l.name {
		delete(fields, "module")
	}
	l.sink.write(l.format(l.sink.now(), level, msg, fields))
}

func (l *consoleLogger) format(ts time.Time, level Level, msg string, fields map[string]any) string {
	styled := l.sink.styled
	var b strings.Builder
	b.WriteString(ts.UTC().Format("15:04:05.000"))
	b.WriteByte(' ')

	label := fmt.Sprintf("%-5s", level.String())
	if styled {
		label = levelColors[level].Render(label)
	}
	b.WriteString(label)

	if l.name != "" {
		name := "[" + l.name + "]"
		if styled {
			name = nameStyle.Render(name)
		}
		b.WriteByte(' ')
		b.WriteString(name)
	}
	b.WriteByte(' ')
	b.WriteString(msg)

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		b.WriteByte(' ')
		if styled {
			b.WriteString(keyStyle.Render(key))
		} else {
			b.WriteString(key)
		}
		b.WriteByte('=')
		b.WriteString(render(fields[key]))
	}
	b.WriteByte('\n')
	return b.String()
}

// addArgs reads alternating key/value pairs. A value without a usable key is
// stored under "!badkey", matching log/slog.
func addArgs(fields map[string]any, args []any) {
	for len(args) > 0 {
		key, ok := args[0].(string)
		if !ok || key == "" || len(args) == 1 {
			fields["!badkey"] = args[len(args)-1]
			if len(args) == 1 {
				return
			}
			args = args[2:]
			continue
		}
		fields[key] = args[1]
		args = args[2:]
	}
}

func render(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return "<nil>"
	case string:
		s = v
	case time.Time:
		s = v.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		s = v.String()
	case error:
		s = v.Error()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
