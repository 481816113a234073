package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sokinpui/logconv/internal/rewriter"
)

const (
	// EnvPrefix prefixes every environment override, e.g. LOGCONV_ROOT.
	EnvPrefix = "LOGCONV"
	// ConfigName is the config file looked up in the working directory,
	// with any extension viper understands (.toml, .yaml, .json).
	ConfigName = ".logconv"
)

// Defaults for a Kotlin Multiplatform shared module.
const (
	DefaultRoot        = "shared/src/commonMain/kotlin"
	DefaultExtension   = ".kt"
	DefaultToken       = "println("
	DefaultReplacement = `Logger.d("{tag}", `
	DefaultImport      = "import com.mediasfu.sdk.util.Logger"
	DefaultTagMaxLen   = 20
)

// Config holds all the command-line flag values.
type Config struct {
	Root        string   `toml:"root" mapstructure:"root"`
	Extension   string   `toml:"extension" mapstructure:"extension"`
	Token       string   `toml:"token" mapstructure:"token"`
	Replacement string   `toml:"replacement" mapstructure:"replacement"`
	Import      string   `toml:"import" mapstructure:"import"`
	TagMaxLen   int      `toml:"tag_max_len" mapstructure:"tag_max_len"`
	SkipDirs    []string `toml:"skip_dirs" mapstructure:"skip_dirs"`
	DryRun      bool     `toml:"dry_run" mapstructure:"dry_run"`
	Copy        bool     `toml:"copy" mapstructure:"copy"`
	Nvim        bool     `toml:"nvim" mapstructure:"nvim"`
	NoAnimation bool     `toml:"no_animation" mapstructure:"no_animation"`
	Verbose     bool     `toml:"verbose" mapstructure:"verbose"`

	// Not persisted.
	ConfigFile  string `toml:"-" mapstructure:"-"`
	PrintConfig bool   `toml:"-" mapstructure:"-"`
	// Stdin reads the path list from standard input instead of walking Root.
	Stdin bool `toml:"-" mapstructure:"-"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Root:        DefaultRoot,
		Extension:   DefaultExtension,
		Token:       DefaultToken,
		Replacement: DefaultReplacement,
		Import:      DefaultImport,
		TagMaxLen:   DefaultTagMaxLen,
		SkipDirs:    []string{},
	}
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"root":         "root",
	"extension":    "extension",
	"token":        "token",
	"replacement":  "replacement",
	"import":       "import",
	"tag-max-len":  "tag_max_len",
	"skip-dir":     "skip_dirs",
	"dry-run":      "dry_run",
	"copy":         "copy",
	"nvim":         "nvim",
	"no-animation": "no_animation",
	"verbose":      "verbose",
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags() (*Config, error) {
	return Parse(os.Args[1:])
}

// Parse resolves the configuration from args, the environment, an optional
// config file and the defaults, in that order of precedence.
func Parse(args []string) (*Config, error) {
	def := DefaultConfig()
	cfg := &Config{}

	flags := pflag.NewFlagSet("logconv", pflag.ContinueOnError)
	flags.StringP("root", "d", def.Root, "Directory to scan recursively.")
	flags.StringP("extension", "e", def.Extension, "Only files whose name ends with this extension are processed (e.g., 'kt').")
	flags.String("token", def.Token, "Call-opening text to replace.")
	flags.String("replacement", def.Replacement, "New call opening; {tag} is replaced by the file tag.")
	flags.String("import", def.Import, "Import line inserted after the package line when missing. Empty disables it.")
	flags.Int("tag-max-len", def.TagMaxLen, "Maximum number of characters in the file tag.")
	flags.StringSlice("skip-dir", def.SkipDirs, "Directory names not to descend into (default: none).")
	flags.BoolP("dry-run", "n", false, "Print a diff of the changes instead of writing files.")
	flags.BoolP("copy", "c", false, "Copy the dry-run diff to the clipboard.")
	flags.Bool("nvim", false, "Write files through Neovim so open buffers pick up the change.")
	flags.Bool("no-animation", false, "Disable the interactive spinner and print plain output.")
	flags.BoolP("verbose", "v", false, "Log every file decision to stderr.")
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file (default: ./"+ConfigName+".{toml,yaml,json}).")
	flags.BoolVar(&cfg.PrintConfig, "print-config", false, "Print the effective configuration as TOML and exit.")
	flags.BoolVar(&cfg.Stdin, "stdin", false, "Read the paths to process from stdin, one per line, instead of walking --root.")

	flags.Usage = func() {
		fmt.Println("Usage: logconv [flags]")
		fmt.Println("\nRewrite println( calls into tagged Logger.d( calls across a source tree.")
		fmt.Println("With --stdin, paths piped on stdin are processed instead of walking --root.")
		fmt.Println("\nExample: git ls-files | logconv --stdin -n")
		fmt.Println("\nFlags:")
		fmt.Print(flags.FlagUsages())
	}
	// Parse errors are returned to the caller, which prints them.
	flags.SetOutput(io.Discard)

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("root", def.Root)
	v.SetDefault("extension", def.Extension)
	v.SetDefault("token", def.Token)
	v.SetDefault("replacement", def.Replacement)
	v.SetDefault("import", def.Import)
	v.SetDefault("tag_max_len", def.TagMaxLen)
	v.SetDefault("skip_dirs", def.SkipDirs)
	v.SetDefault("dry_run", false)
	v.SetDefault("copy", false)
	v.SetDefault("nvim", false)
	v.SetDefault("no_animation", false)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	if err := readConfigFile(v, cfg.ConfigFile); err != nil {
		return nil, err
	}

	cfg.Root = v.GetString("root")
	cfg.Extension = v.GetString("extension")
	cfg.Token = v.GetString("token")
	cfg.Replacement = v.GetString("replacement")
	cfg.Import = v.GetString("import")
	cfg.TagMaxLen = v.GetInt("tag_max_len")
	cfg.SkipDirs = v.GetStringSlice("skip_dirs")
	cfg.DryRun = v.GetBool("dry_run")
	cfg.Copy = v.GetBool("copy")
	cfg.Nvim = v.GetBool("nvim")
	cfg.NoAnimation = v.GetBool("no_animation")
	cfg.Verbose = v.GetBool("verbose")

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readConfigFile merges an explicit config file, or ./.logconv.* if present.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(ConfigName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Normalize fixes up the extension and checks option combinations.
func (c *Config) Normalize() error {
	// Normalize extension
	if len(c.Extension) > 0 && c.Extension[0] != '.' {
		c.Extension = "." + c.Extension
	}

	if c.Copy && !c.DryRun {
		return fmt.Errorf("error: --copy requires --dry-run")
	}
	if c.Nvim && c.DryRun {
		return fmt.Errorf("error: --nvim and --dry-run are mutually exclusive")
	}
	if err := c.Rule().Validate(); err != nil {
		return fmt.Errorf("error: invalid rewrite rule: %w", err)
	}
	return nil
}

// Rule returns the rewrite rule described by the configuration.
func (c *Config) Rule() rewriter.Rule {
	return rewriter.Rule{
		Token:       c.Token,
		Replacement: c.Replacement,
		Import:      c.Import,
		Extension:   c.Extension,
		TagMaxLen:   c.TagMaxLen,
	}
}

// TOML renders the persisted part of the configuration.
func (c *Config) TOML() (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(out), nil
}
