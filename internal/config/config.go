// Package config reads the optional wendc configuration file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"gopkg.wendlang.org/wendc/internal/exc"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "WENDC_CONFIG"

type Config struct {
	Log     LogConfig     `toml:"log"`
	Lexer   LexerConfig   `toml:"lexer"`
	Grammar GrammarConfig `toml:"grammar"`
	Output  OutputConfig  `toml:"output"`
	Compile CompileConfig `toml:"compile"`

	// Path is the file the values were read from. It is empty when no file
	// was found.
	Path string `toml:"-"`
}

type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
}

type LexerConfig struct {
	TabWidth int `toml:"tab_width"`
}

type GrammarConfig struct {
	// Path replaces the built-in grammar with a YAML definition.
	Path string `toml:"path"`
}

type OutputConfig struct {
	// Color is auto, always or never.
	Color string `toml:"color"`
}

type CompileConfig struct {
	MaxConcurrency int `toml:"max_concurrency"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Lexer.TabWidth < 1 {
		c.Lexer.TabWidth = 4
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
}

// Load reads the config file at path. References to ${VAR} in string values
// are expanded with lookup.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeFileNotFound, err)
		}
		return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeInvalidConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, exc.Newf(exc.Location{URI: path}, exc.CodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	c.Path = path
	c.expandEnv(lookup)
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeInvalidConfig, err)
	}
	return &c, nil
}

func (c *Config) expandEnv(lookup func(string) (string, bool)) {
	expand := func(s string) string {
		return os.Expand(s, func(name string) string {
			v, _ := lookup(name)
			return v
		})
	}
	c.Log.Level = expand(c.Log.Level)
	c.Grammar.Path = expand(c.Grammar.Path)
	c.Output.Color = expand(c.Output.Color)
}

// Validate checks values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("log.level must be one of debug, info, warn, error")
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return errors.New("output.color must be one of auto, always, never")
	}
	if c.Compile.MaxConcurrency < 0 {
		return errors.New("compile.max_concurrency must not be negative")
	}
	return nil
}

// Find locates the config file. An explicit path wins, then $WENDC_CONFIG,
// then the first config.toml found under the platform config directories.
// Find returns an empty path, and no error, when there is no file.
func Find(explicit string, lookup func(string) (string, bool)) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p, ok := lookup(EnvConfig); ok && p != "" {
		return p, nil
	}
	for _, dir := range searchDirs(lookup) {
		p := filepath.Join(dir, "wendc", "config.toml")
		stat, err := os.Stat(p)
		if err == nil && !stat.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", exc.Wrap(exc.Location{URI: p}, exc.CodePermissionDenied, err)
		}
	}
	return "", nil
}

// Resolve finds and loads the config file, falling back to Default when
// there is none.
func Resolve(explicit string, lookup func(string) (string, bool)) (*Config, error) {
	path, err := Find(explicit, lookup)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path, lookup)
}
