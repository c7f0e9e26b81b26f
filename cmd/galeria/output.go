package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"galeria/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

// writeTable renders a rounded table on a terminal and tab-separated rows
// when piped, so the output stays scriptable.
func writeTable(headers []string, rows [][]string) error {
	if !stdoutIsTerminal() {
		return format.TSV(os.Stdout, rows)
	}
	return writePlain("%s\n", format.Table(headers, rows))
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
