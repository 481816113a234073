package patcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// filePathRegex extracts the file path from a '+++ b/...' line.
var filePathRegex = regexp.MustCompile(`(?m)^\+\+\+ b/(?P<path>.*?)(\s|$)`)

// UnifiedDiff renders the change to one file as a git-style unified diff.
// It returns an empty string when before and after are equal.
func UnifiedDiff(relPath, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + relPath,
		ToFile:   "b/" + relPath,
		Context:  contextLines,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", relPath, err)
	}
	return out, nil
}

// ExtractPaths lists the target paths named in a combined diff, in order.
func ExtractPaths(diff string) []string {
	var paths []string
	for _, m := range filePathRegex.FindAllStringSubmatch(diff, -1) {
		paths = append(paths, strings.TrimSpace(m[1]))
	}
	return paths
}
