package rewriter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sokinpui/logconv/model"
)

// TagPlaceholder is expanded to the per-file tag inside a replacement template.
const TagPlaceholder = "{tag}"

// packageLineRegex matches a package declaration at the start of a line.
// The optional \r keeps CRLF files working with (?m)$, which only stops at \n.
var packageLineRegex = regexp.MustCompile(`(?m)^package[ \t]+[\w.]+[ \t]*\r?$`)

// Rule describes one token-to-call rewrite.
type Rule struct {
	// Token is the call-opening text being replaced, e.g. `println(`.
	Token string
	// Replacement is the new call opening. TagPlaceholder is replaced by the file tag.
	Replacement string
	// Import is inserted after the package line when absent from the file.
	// Empty disables insertion.
	Import string
	// Extension is stripped from the file name when deriving the tag.
	Extension string
	// TagMaxLen truncates the tag to this many characters.
	TagMaxLen int
}

// Validate checks that the rule can be applied.
func (r Rule) Validate() error {
	if r.Token == "" {
		return fmt.Errorf("token must not be empty")
	}
	if r.Replacement == "" {
		return fmt.Errorf("replacement must not be empty")
	}
	if r.Extension == "" {
		return fmt.Errorf("extension must not be empty")
	}
	if r.TagMaxLen <= 0 {
		return fmt.Errorf("tag length must be positive, got %d", r.TagMaxLen)
	}
	return nil
}

// Name is the token without its call parenthesis, used in the summary line.
func (r Rule) Name() string {
	name := strings.TrimSuffix(r.Token, "(")
	if name == "" {
		return r.Token
	}
	return name
}

// Tag derives the per-file label: base name without the extension,
// truncated to maxLen characters.
func Tag(filename, ext string, maxLen int) string {
	name := strings.TrimSuffix(filepath.Base(filename), ext)
	runes := []rune(name)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	return string(runes)
}

// Matches reports whether content contains the call token.
func (r Rule) Matches(content string) bool {
	return strings.Contains(content, r.Token)
}

// InsertImport adds the import line right after the first package line.
// It returns the content unchanged when the import is already present,
// when no import is configured, or when there is no package line.
func (r Rule) InsertImport(content string) (string, bool) {
	if r.Import == "" || strings.Contains(content, r.Import) {
		return content, false
	}

	loc := packageLineRegex.FindStringIndex(content)
	if loc == nil {
		return content, false
	}

	end := loc[1]
	lineBreak := "\n"
	if end > loc[0] && content[end-1] == '\r' {
		lineBreak = "\r\n"
	}

	if end >= len(content) {
		// Package line is the last line and has no terminator.
		return content + lineBreak + r.Import, true
	}

	// Skip past the '\n' that ends the package line.
	end++
	return content[:end] + r.Import + lineBreak + content[end:], true
}

// RewriteCalls replaces every occurrence of the token with the tagged
// replacement and returns the new content and the number of replacements.
// Occurrences inside string literals and comments are rewritten as well.
func (r Rule) RewriteCalls(content, tag string) (string, int) {
	count := strings.Count(content, r.Token)
	if count == 0 {
		return content, 0
	}
	replacement := strings.ReplaceAll(r.Replacement, TagPlaceholder, tag)
	return strings.ReplaceAll(content, r.Token, replacement), count
}

// Apply runs match, import insertion and call rewriting for a single file.
// A file that does not match comes back with Modified equal to Original.
func (r Rule) Apply(path, content string) model.FileRecord {
	rec := model.FileRecord{
		Path:     path,
		Original: content,
		Modified: content,
	}
	if !r.Matches(content) {
		return rec
	}

	modified, added := r.InsertImport(content)
	modified, count := r.RewriteCalls(modified, Tag(path, r.Extension, r.TagMaxLen))

	rec.Modified = modified
	rec.Count = count
	rec.ImportAdded = added
	return rec
}
