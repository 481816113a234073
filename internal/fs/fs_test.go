package fs

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func collect(t *testing.T, root string, skip []string) []string {
	t.Helper()
	var got []string
	for p, err := range WalkSources(root, ".kt", skip) {
		if err != nil {
			t.Fatalf("WalkSources: %v", err)
		}
		rel, _ := filepath.Rel(root, p)
		got = append(got, filepath.ToSlash(rel))
	}
	slices.Sort(got)
	return got
}

func TestWalkSourcesFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.kt"), "")
	writeFile(t, filepath.Join(root, "sub", "deep", "B.kt"), "")
	writeFile(t, filepath.Join(root, "sub", "C.kts"), "")
	writeFile(t, filepath.Join(root, "sub", "D.java"), "")
	writeFile(t, filepath.Join(root, "build", "Gen.kt"), "")

	got := collect(t, root, nil)
	want := []string{"A.kt", "build/Gen.kt", "sub/deep/B.kt"}
	if !slices.Equal(got, want) {
		t.Errorf("WalkSources() = %v, want %v", got, want)
	}

	got = collect(t, root, []string{"build"})
	want = []string{"A.kt", "sub/deep/B.kt"}
	if !slices.Equal(got, want) {
		t.Errorf("WalkSources() skipping build = %v, want %v", got, want)
	}
}

func TestWalkSourcesFollowsFileSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "Real.kt")
	writeFile(t, target, "")
	writeFile(t, filepath.Join(root, "A.kt"), "")
	if err := os.Symlink(target, filepath.Join(root, "Link.kt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "missing.kt"), filepath.Join(root, "Dangling.kt")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	got := collect(t, root, nil)
	want := []string{"A.kt", "Link.kt"}
	if !slices.Equal(got, want) {
		t.Errorf("WalkSources() = %v, want %v", got, want)
	}
}

func TestWalkSourcesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")
	if got := collect(t, root, nil); len(got) != 0 {
		t.Errorf("expected no files, got %v", got)
	}
}

func TestWalkSourcesStopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"A.kt", "B.kt", "C.kt"} {
		writeFile(t, filepath.Join(root, name), "")
	}
	n := 0
	for range WalkSources(root, ".kt", nil) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("expected to stop after one file, got %d", n)
	}
}

func TestWriteIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.kt")
	writeFile(t, path, "old")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	wrote, err := WriteIfChanged(path, "old", "old")
	if err != nil || wrote {
		t.Fatalf("unchanged content: wrote=%v err=%v", wrote, err)
	}

	wrote, err = WriteIfChanged(path, "old", "new")
	if err != nil || !wrote {
		t.Fatalf("changed content: wrote=%v err=%v", wrote, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestReadTextRejectsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin.kt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 'a'}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadText(path); err == nil {
		t.Error("expected a decode error")
	}
}

func TestPathResolverRelative(t *testing.T) {
	r, err := NewPathResolver("some/root")
	if err != nil {
		t.Fatalf("NewPathResolver: %v", err)
	}
	if !filepath.IsAbs(r.Root()) {
		t.Errorf("Root() = %q, want absolute", r.Root())
	}
	abs := r.Resolve(filepath.Join("x", "A.kt"))
	if got := r.Relative(abs); got != filepath.Join("x", "A.kt") {
		t.Errorf("Relative() = %q", got)
	}
	if !HasExtension("dir.kt/A.kt", ".kt") || HasExtension("A.kts", ".kt") {
		t.Error("HasExtension mismatch")
	}
}
