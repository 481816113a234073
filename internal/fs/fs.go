package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// PathResolver turns the configured root into an absolute path and makes
// paths under it readable for display.
type PathResolver struct {
	root string
	wd   string
}

// NewPathResolver creates a new PathResolver. An empty root means the
// current working directory.
func NewPathResolver(root string) (*PathResolver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not get current working directory: %w", err)
	}
	if root == "" {
		return &PathResolver{root: wd, wd: wd}, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root directory '%s': %w", root, err)
	}
	return &PathResolver{root: abs, wd: wd}, nil
}

// Root returns the absolute root directory.
func (r *PathResolver) Root() string {
	return r.root
}

// Resolve returns p as an absolute path. Relative paths are taken relative
// to the working directory, matching how a shell would pass them.
func (r *PathResolver) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.wd, p)
}

// Relative returns p relative to the working directory, or p itself when
// that is not possible.
func (r *PathResolver) Relative(p string) string {
	rel, err := filepath.Rel(r.wd, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

// HasExtension reports whether the base name of path ends with ext.
func HasExtension(path, ext string) bool {
	return strings.HasSuffix(filepath.Base(path), ext)
}

// WalkSources lazily yields every regular file under root whose name ends
// with ext, including symlinks that resolve to one. Directories named in
// skipDirs are pruned; an empty list walks everything. A root that does not
// exist yields nothing. Any other walk error is yielded once and ends the
// sequence.
func WalkSources(root, ext string, skipDirs []string) iter.Seq2[string, error] {
	skip := make(map[string]struct{}, len(skipDirs))
	for _, d := range skipDirs {
		skip[d] = struct{}{}
	}

	return func(yield func(string, error) bool) {
		if _, err := os.Stat(root); errors.Is(err, iofs.ErrNotExist) {
			return
		}

		errStop := errors.New("stop")
		err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if _, ok := skip[d.Name()]; ok && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !HasExtension(path, ext) || !isRegularFile(path, d) {
				return nil
			}
			if !yield(path, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield("", fmt.Errorf("failed to walk %s: %w", root, err))
		}
	}
}

// isRegularFile reports whether d is a regular file or a symlink to one.
// Symlinked directories are not followed.
func isRegularFile(path string, d iofs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&iofs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadText reads a file and checks that it is valid UTF-8 text.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("failed to decode %s: not valid UTF-8", path)
	}
	return string(data), nil
}

// WriteIfChanged writes modified to path when it differs from original,
// keeping the file's permissions. It reports whether a write happened.
func WriteIfChanged(path, original, modified string) (bool, error) {
	if original == modified {
		return false, nil
	}
	mode := iofs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(modified), mode); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
