package convert

import (
	"fmt"

	"github.com/sokinpui/logconv/cli"
	"github.com/sokinpui/logconv/model"
)

// Config for using logconv as a library. Zero fields take the CLI defaults.
type Config struct {
	// Only files whose name ends with this extension are processed.
	Extension string
	// Call-opening text to replace.
	Token string
	// New call opening; {tag} is replaced by the file tag.
	Replacement string
	// Import line inserted after the package line when missing.
	Import string
	// Maximum number of characters in the file tag.
	TagMaxLen int
	// Directory names not to descend into. Nil uses the defaults.
	SkipDirs []string
	// Compute diffs without writing files.
	DryRun bool
}

// Run converts every matching file under root and returns the totals.
func Run(root string, config Config) (model.Summary, error) {
	cfg := cli.DefaultConfig()
	cfg.Root = root
	cfg.DryRun = config.DryRun
	if config.Extension != "" {
		cfg.Extension = config.Extension
	}
	if config.Token != "" {
		cfg.Token = config.Token
	}
	if config.Replacement != "" {
		cfg.Replacement = config.Replacement
	}
	if config.Import != "" {
		cfg.Import = config.Import
	}
	if config.TagMaxLen > 0 {
		cfg.TagMaxLen = config.TagMaxLen
	}
	if config.SkipDirs != nil {
		cfg.SkipDirs = config.SkipDirs
	}
	if err := cfg.Normalize(); err != nil {
		return model.Summary{}, err
	}

	app, err := New(cfg)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to initialize logconv app: %w", err)
	}
	return app.Execute()
}
