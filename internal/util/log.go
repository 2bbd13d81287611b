package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

var (
	mu      sync.Mutex
	out     io.Writer = os.Stdout
	color             = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	logFile *os.File
)

// SetOutput redirects console lines to w. Color codes are dropped unless w
// is a terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	color = false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}

// SetLogFile mirrors every console line, without color, to path.
func SetLogFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	mu.Lock()
	logFile = f
	mu.Unlock()
	return nil
}

func CloseLogFile() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// LogWriter returns the open log file, or nil.
func LogWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	return logFile
}

func Info(msg string, args ...interface{}) {
	emit("\033[34m[INFO]\033[0m ", msg, args...)
}

func Success(msg string, args ...interface{}) {
	emit("\033[32m[DONE]\033[0m ", msg, args...)
}

func Fail(msg string, args ...interface{}) {
	emit("\033[31m[FAIL]\033[0m ", msg, args...)
}

func emit(tag, msg string, args ...interface{}) {
	line := fmt.Sprintf(tag+msg+"\n", args...)
	mu.Lock()
	defer mu.Unlock()
	if color {
		fmt.Fprint(out, line)
	} else {
		fmt.Fprint(out, stripColor(line))
	}
	if logFile != nil {
		logFile.WriteString(stripColor(line))
	}
}

func stripColor(s string) string {
	// 簡易: エスケープシーケンス除去
	res := []rune{}
	skip := false
	for _, r := range s {
		if r == '\033' {
			skip = true
			continue
		}
		if skip && r == 'm' {
			skip = false
			continue
		}
		if !skip {
			res = append(res, r)
		}
	}
	return string(res)
}

// NewLogger returns a text slog logger at level (debug, info, warn, error).
// Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func NewUUID() string {
	return uuid.NewString()
}
