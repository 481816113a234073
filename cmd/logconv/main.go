package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/sokinpui/logconv/cli"
	"github.com/sokinpui/logconv/convert"
	"github.com/sokinpui/logconv/internal/source"
	"github.com/sokinpui/logconv/internal/tui"
	"github.com/sokinpui/logconv/internal/ui"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		ui.Error("%v", err)
		os.Exit(1)
	}
	if cfg.PrintConfig {
		out, err := cfg.TOML()
		if err != nil {
			ui.Error("%v", err)
			os.Exit(1)
		}
		fmt.Print(out)
		return
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "logconv",
	})
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	if cfg.Stdin && isTerminal(os.Stdin) {
		ui.Error("--stdin expects a path list on standard input, e.g. git ls-files | logconv --stdin")
		os.Exit(1)
	}
	if !cfg.Stdin && source.StdinIsPiped() {
		logger.Debug("stdin is piped but --stdin is not set, walking root", "root", cfg.Root)
	}

	app, err := convert.New(cfg, convert.WithLogger(logger))
	if err != nil {
		ui.Error("Failed to initialize application: %v", err)
		os.Exit(1)
	}
	name := app.Rule().Name()

	// Diffs and debug logs go straight to the terminal, and with --stdin the
	// input belongs to the path list, so all of them bypass the TUI.
	if cfg.NoAnimation || cfg.DryRun || cfg.Verbose || cfg.Stdin || !isTerminal(os.Stdout) {
		if cfg.Stdin {
			ui.Header("--- Reading paths from stdin ---")
		}
		summary, err := app.Execute()
		if err != nil {
			exitWithError(err)
		}
		for _, r := range summary.Converted {
			fmt.Print(r.Diff)
		}
		ui.PrintSummary(os.Stdout, summary, name)
		return
	}

	model := tui.New(app, name)
	p := tea.NewProgram(model)
	model.SetProgram(p)
	if _, err := p.Run(); err != nil {
		ui.Error("Error running program: %v", err)
		os.Exit(1)
	}
	if model.Err() != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func exitWithError(err error) {
	ui.Error("Error: %v", err)
	var detailed *convert.DetailedError
	if errors.As(err, &detailed) {
		fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
	}
	os.Exit(1)
}
