// Package diag reports scanner and generator diagnostics with source context.
package diag

import (
	"fmt"
	"io"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// Warning marks a recoverable condition, e.g. an undocumented route.
	Warning Severity = iota
	// Error marks a route-local failure; the route or tag is dropped.
	Error
	// Fatal marks a condition that aborts the whole pass.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// Reporter receives diagnostics as they are discovered.
// Line is 1-based; file may be empty for diagnostics without a source position.
type Reporter interface {
	Report(severity Severity, file string, line int, message string)
}

// Console writes diagnostics to a single writer, one per line,
// with an ANSI-colored severity tag.
type Console struct {
	Out io.Writer
	// NoColor disables ANSI escapes.
	NoColor bool
}

func (c *Console) Report(severity Severity, file string, line int, message string) {
	tag := severity.String()
	if !c.NoColor {
		switch severity {
		case Warning:
			tag = "\033[33m" + tag + "\033[0m"
		case Error, Fatal:
			tag = "\033[31m" + tag + "\033[0m"
		}
	}
	switch {
	case file == "":
		fmt.Fprintf(c.Out, "%s: %s\n", tag, message)
	case line <= 0:
		fmt.Fprintf(c.Out, "%s: %s: %s\n", tag, file, message)
	default:
		fmt.Fprintf(c.Out, "%s: %s:%d: %s\n", tag, file, line, message)
	}
}

// Func adapts a plain function to the Reporter interface.
type Func func(severity Severity, file string, line int, message string)

func (f Func) Report(severity Severity, file string, line int, message string) {
	f(severity, file, line, message)
}
