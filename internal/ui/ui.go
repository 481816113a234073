package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/sokinpui/logconv/model"
)

var (
	HeaderColor = color.New(color.FgBlue, color.Bold)
	ErrorColor  = color.New(color.FgRed)
)

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

// --- Summaries ---

// ConvertedLine is the per-file report line.
func ConvertedLine(r model.FileResult) string {
	return fmt.Sprintf("Converted %d in %s", r.Count, r.Name)
}

// TotalLine is the final report line. name is the token name, e.g. "println".
func TotalLine(s model.Summary, name string) string {
	return fmt.Sprintf("Total: %d files, %d %s calls converted", s.Files, s.Calls, name)
}

// SummaryLines returns the report lines in print order.
func SummaryLines(s model.Summary, name string) []string {
	lines := make([]string, 0, len(s.Converted)+1)
	for _, r := range s.Converted {
		lines = append(lines, ConvertedLine(r))
	}
	return append(lines, TotalLine(s, name))
}

// PrintSummary writes the report to w without colour so it stays greppable.
func PrintSummary(w io.Writer, s model.Summary, name string) {
	if s.DryRun {
		Header("--- Dry run, no files written ---")
	}
	for _, line := range SummaryLines(s, name) {
		fmt.Fprintln(w, line)
	}
}
