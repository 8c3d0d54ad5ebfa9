package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/superloach/ycc/pkg/ycc"
)

const defaultExtension = ".ycc"

type debugConfig struct {
	Lex   bool `yaml:"lex"`
	Parse bool `yaml:"parse"`
	Dump  bool `yaml:"dump"`
}

// config holds the interpreter settings that may come from a config file.
// Flags given on the command line take precedence.
type config struct {
	Extension string      `yaml:"extension"`
	MaxDepth  int         `yaml:"max_depth"`
	Color     bool        `yaml:"color"`
	Debug     debugConfig `yaml:"debug"`
}

func defaultConfig() config {
	return config{
		Extension: defaultExtension,
		MaxDepth:  ycc.DefaultMaxDepth,
		Color:     true,
	}
}

// loadConfig reads a YAML config file over the defaults. Unknown keys are
// an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	abs, err := filepath.Abs(path)
	if err != nil {
		return cfg, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", abs, err)
	}

	if err := cfg.normalize(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", abs, err)
	}
	return cfg, nil
}

func (c *config) normalize() error {
	if c.Extension == "" {
		c.Extension = defaultExtension
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	return nil
}

// override applies every flag set explicitly in fs on top of c.
func (c *config) override(fs *flag.FlagSet) error {
	fs.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch v := getter.Get().(type) {
		case string:
			if f.Name == "ext" {
				c.Extension = v
			}
		case int:
			if f.Name == "max-depth" {
				c.MaxDepth = v
			}
		case bool:
			switch f.Name {
			case "no-color":
				c.Color = !v
			case "debug-lex":
				c.Debug.Lex = v
			case "debug-parse":
				c.Debug.Parse = v
			case "dump":
				c.Debug.Dump = v
			case "verbose":
				if v {
					c.Debug = debugConfig{Lex: true, Parse: true, Dump: true}
				}
			}
		}
	})
	if err := c.normalize(); err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	return nil
}
