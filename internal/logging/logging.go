package logging

import (
	"log"
	"os"
)

var (
	disabled = false
	logger   = log.New(os.Stderr, "", log.LstdFlags)
)

// Disable turns off all logging (used by tests and --quiet)
func Disable() {
	disabled = true
}

// Enable turns logging back on
func Enable() {
	disabled = false
}

// Info logs an info message
func Info(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Infof logs a formatted info message
func Infof(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Warn logs a warning message
func Warn(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Error logs an error message
func Error(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Errorf logs a formatted error message
func Errorf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Debug logs a debug message (same as Info when not disabled)
func Debug(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Tagged is a logger with a fixed component tag, e.g. "[Gemini]".
// Providers use it for per-backend progress lines.
type Tagged struct {
	tag string
}

// WithTag creates a tagged logger
func WithTag(tag string) Tagged {
	return Tagged{tag: "[" + tag + "]"}
}

// Infof logs a formatted info message with the component tag
func (t Tagged) Infof(format string, v ...any) {
	Infof(t.tag+" "+format, v...)
}

// Warnf logs a formatted warning message with the component tag
func (t Tagged) Warnf(format string, v ...any) {
	Warnf(t.tag+" "+format, v...)
}

// Errorf logs a formatted error message with the component tag
func (t Tagged) Errorf(format string, v ...any) {
	Errorf(t.tag+" "+format, v...)
}
