package model

// FileRecord is the transient state of one matched file while it is processed.
type FileRecord struct {
	Path        string
	Original    string
	Modified    string
	Count       int  // occurrences of the call token in Original
	ImportAdded bool // whether the import line was inserted
}

// Changed reports whether the rewrite produced different content.
func (r FileRecord) Changed() bool {
	return r.Modified != r.Original
}

// FileResult is what processing one file contributes to the run totals.
type FileResult struct {
	Path     string
	Name     string // base name, used in the report line
	Count    int
	Modified bool
	Diff     string // unified diff, only filled in dry-run mode
}

// Summary holds the results of a run for display.
type Summary struct {
	Converted []FileResult
	Files     int
	Calls     int
	DryRun    bool
}

// Add folds a per-file result into the totals. Unmodified results are ignored.
func (s *Summary) Add(r FileResult) {
	if !r.Modified {
		return
	}
	s.Converted = append(s.Converted, r)
	s.Files++
	s.Calls += r.Count
}
