package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

// levelStyle is the ANSI prefix used for a level on a color terminal
var levelStyle = map[Level]string{
	WarnLevel:  ColorYellow,
	ErrorLevel: ColorRed,
	FatalLevel: ColorBold + ColorRed,
}

// sinks are the destinations shared by a logger and everything derived from it
type sinks struct {
	info  *log.Logger // Debug, Info
	alert *log.Logger // Warn, Error, Fatal
	color bool
	exit  func(code int)
}

func (s *sinks) writerFor(level Level) *log.Logger {
	if level >= WarnLevel {
		return s.alert
	}
	return s.info
}

// DefaultLogger writes one line per record through the standard log package.
// Debug and Info go to stdout, Warn and above to stderr. Fatal exits after writing.
type DefaultLogger struct {
	*sinks
	level  Level
	fields Fields
}

// NewDefaultLogger logs to the process streams, colored when stdout is a terminal
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		sinks: &sinks{
			info:  log.New(os.Stdout, "", log.LstdFlags),
			alert: log.New(os.Stderr, "", log.LstdFlags),
			color: isTerminal(os.Stdout),
			exit:  os.Exit,
		},
		level: InfoLevel,
	}
}

// NewLogger creates an uncolored logger that sends every level to w.
// Fatal does not exit the process.
func NewLogger(w io.Writer, level Level) *DefaultLogger {
	l := log.New(w, "", 0)
	return &DefaultLogger{
		sinks: &sinks{info: l, alert: l, exit: func(int) {}},
		level: level,
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// render builds "[LEVEL] msg: err {k=v ...}" with keys sorted
func (d *DefaultLogger) render(level Level, err error, msg string, extra []Fields) string {
	merged := maps.Clone(d.fields)
	if merged == nil {
		merged = Fields{}
	}
	for _, f := range extra {
		maps.Copy(merged, f)
	}

	var b strings.Builder
	style, styled := levelStyle[level]
	styled = styled && d.color
	if styled {
		b.WriteString(style)
	}

	b.WriteString("[" + level.String() + "] " + msg)
	if err != nil {
		b.WriteString(": " + err.Error())
	}

	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		pairs := make([]string, 0, len(merged))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, merged[k]))
		}
		b.WriteString(" {" + strings.Join(pairs, " ") + "}")
	}

	if styled {
		b.WriteString(ColorReset)
	}
	return b.String()
}

func (d *DefaultLogger) emit(level Level, err error, msg string, extra []Fields) {
	if level < d.level {
		return
	}
	d.writerFor(level).Println(d.render(level, err, msg, extra))
	if level == FatalLevel {
		d.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) { d.emit(DebugLevel, nil, msg, fields) }
func (d *DefaultLogger) Info(msg string, fields ...Fields)  { d.emit(InfoLevel, nil, msg, fields) }
func (d *DefaultLogger) Warn(msg string, fields ...Fields)  { d.emit(WarnLevel, nil, msg, fields) }

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.emit(ErrorLevel, err, msg, fields)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.emit(FatalLevel, err, msg, fields)
}

// WithFields returns a child sharing this logger's sinks. The child's level
// starts at the parent's and changes independently.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := &DefaultLogger{sinks: d.sinks, level: d.level, fields: Fields{}}
	maps.Copy(child.fields, d.fields)
	maps.Copy(child.fields, fields)
	return child
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	fields, ok := fieldsFromContext(ctx)
	if !ok {
		return d
	}
	return d.WithFields(fields)
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards everything. Tests install it to keep output quiet.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(string, ...Fields)            {}
func (n *NoOpLogger) Info(string, ...Fields)             {}
func (n *NoOpLogger) Warn(string, ...Fields)             {}
func (n *NoOpLogger) Error(error, string, ...Fields)     {}
func (n *NoOpLogger) Fatal(error, string, ...Fields)     {}
func (n *NoOpLogger) WithFields(Fields) Logger           { return n }
func (n *NoOpLogger) WithContext(context.Context) Logger { return n }
func (n *NoOpLogger) SetLevel(Level)                     {}
