package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/luminalang/lumina/internal/diagnostics"
)

// colorEnabled mirrors the teacher's terminal-detection idiom in
// internal/evaluator/builtins_term.go: only colorize when stdout is an
// actual terminal, not a pipe or redirected file.
func colorEnabled() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiBold   = "\x1b[1m"
	ansiReset  = "\x1b[0m"
)

func severityColor(sev diagnostics.Severity) string {
	switch sev {
	case diagnostics.Error:
		return ansiRed
	case diagnostics.Warning:
		return ansiYellow
	default:
		return ansiBlue
	}
}

// printDiagnostics writes one line per diagnostic, sorted by source
// location, optionally prefixed with a trace run id.
func printDiagnostics(w io.Writer, path string, items []*diagnostics.Diagnostic, runID string) {
	color := colorEnabled()
	sorted := diagnostics.SortByLocation(items)
	for _, d := range sorted {
		prefix := ""
		if runID != "" {
			prefix = fmt.Sprintf("[%s] ", runID)
		}
		if color {
			fmt.Fprintf(w, "%s%s%s:%s %s%s%s %s%s\n",
				prefix, path, d.Span, severityColor(d.Severity), ansiBold, d.Severity, ansiReset, d.Message, colorSuffix(color, d.Code))
		} else {
			fmt.Fprintf(w, "%s%s:%s %s [%s] %s\n", prefix, path, d.Span, d.Severity, d.Code, d.Message)
		}
		for _, rel := range d.Related {
			fmt.Fprintf(w, "    %s %s: %s\n", prefix, rel.Span, rel.Message)
		}
	}
}

func colorSuffix(color bool, code diagnostics.Code) string {
	if !color {
		return fmt.Sprintf(" [%s]", code)
	}
	return fmt.Sprintf(" %s[%s]%s", ansiBlue, code, ansiReset)
}
