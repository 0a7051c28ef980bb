package edmv

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var levelColors = map[Level]lipgloss.Color{
	LevelDebug: lipgloss.Color("245"),
	LevelInfo:  lipgloss.Color("63"),
	LevelWarn:  lipgloss.Color("214"),
	LevelError: lipgloss.Color("197"),
}

// Logger writes leveled diagnostic lines. It never writes to stdout so the
// dry-run plan and the summary stay machine readable.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	min    Level
	styles map[Level]lipgloss.Style
}

func NewLogger(out io.Writer, min Level, mode ColorMode) *Logger {
	l := &Logger{out: out, min: min, styles: make(map[Level]lipgloss.Style)}

	r := lipgloss.NewRenderer(out)
	color := useColor(out, mode)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	for lvl, c := range levelColors {
		s := r.NewStyle()
		if color {
			s = s.Bold(true).Foreground(c)
		}
		l.styles[lvl] = s
	}
	return l
}

// nopLogger discards everything; used when a component is built without one.
func nopLogger() *Logger {
	return NewLogger(io.Discard, LevelError+1, ColorNever)
}

func useColor(out io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || strings.ToLower(os.Getenv("TERM")) == "dumb" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (l *Logger) line(lvl Level, format string, args ...any) {
	if l == nil || lvl < l.min {
		return
	}
	text := fmt.Sprintf(format, args...)
	tag := l.styles[lvl].Render("[" + levelNames[lvl] + "]")

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, tag+" "+text+"\n")
}

func (l *Logger) Debug(format string, args ...any) { l.line(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.line(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.line(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.line(LevelError, format, args...) }
