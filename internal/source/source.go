package source

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/sokinpui/logconv/internal/fs"
)

// SourceProvider determines where candidate file paths come from.
type SourceProvider struct {
	resolver  *fs.PathResolver
	extension string
	skipDirs  []string
	stdin     io.Reader
}

// StdinIsPiped reports whether something is piped into the process.
func StdinIsPiped() bool {
	stat, err := os.Stdin.Stat()
	return err == nil && stat.Mode()&os.ModeNamedPipe != 0
}

// New creates a new SourceProvider. With useStdin set, paths are read from
// stdin instead of walking the root directory.
func New(resolver *fs.PathResolver, extension string, skipDirs []string, useStdin bool) *SourceProvider {
	sp := &SourceProvider{
		resolver:  resolver,
		extension: extension,
		skipDirs:  skipDirs,
	}
	if useStdin {
		sp.stdin = os.Stdin
	}
	return sp
}

// WithReader forces paths to be read from r, one per line.
func (sp *SourceProvider) WithReader(r io.Reader) *SourceProvider {
	sp.stdin = r
	return sp
}

// FromStdin reports whether paths come from a piped list.
func (sp *SourceProvider) FromStdin() bool {
	return sp.stdin != nil
}

// Paths yields candidate source files. Listed paths get the same extension
// filter as walked ones.
func (sp *SourceProvider) Paths() iter.Seq2[string, error] {
	if sp.stdin == nil {
		return fs.WalkSources(sp.resolver.Root(), sp.extension, sp.skipDirs)
	}
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(sp.stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || !fs.HasExtension(line, sp.extension) {
				continue
			}
			if !yield(sp.resolver.Resolve(line), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("failed to read paths from stdin: %w", err))
		}
	}
}

// Collect drains Paths into a slice so the total is known up front.
func (sp *SourceProvider) Collect() ([]string, error) {
	var paths []string
	for p, err := range sp.Paths() {
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
