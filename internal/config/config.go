// Package config loads and validates the docindex build configuration.
// Configuration is loaded once before the build starts and treated as
// immutable once Finalized.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docindex/internal/errors"
)

// DefaultInventoryFilename is the artifact name used when the configuration
// does not override inventory_filename.
const DefaultInventoryFilename = "objects.inv"

// Config represents the application configuration
type Config struct {
	Site    SiteConfig   `yaml:"site"`
	Source  SourceConfig `yaml:"source"`
	Output  OutputConfig `yaml:"output"`
	Builder string       `yaml:"builder,omitempty"` // default builder when the CLI does not pass one

	// InventoryFilename names the inventory artifact emitted into the
	// output directory by the inventory builders.
	InventoryFilename string `yaml:"inventory_filename,omitempty"`

	// SuppressWarnings lists warning category patterns (e.g. "ref.*") that
	// are dropped instead of logged.
	SuppressWarnings []string `yaml:"suppress_warnings,omitempty"`

	Intersphinx IntersphinxConfig `yaml:"intersphinx,omitempty"`
}

// SiteConfig describes the documented project.
type SiteConfig struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	RootDoc string `yaml:"root_doc,omitempty"` // master document, defaults to "index"
}

// SourceConfig locates the documentation sources.
type SourceConfig struct {
	Directory string `yaml:"directory"`            // markdown source tree
	StaticDir string `yaml:"static_dir,omitempty"` // static assets, relative to Directory
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
	StateFile string `yaml:"state_file,omitempty"` // build state database, relative to Directory
}

// IntersphinxConfig configures cross-project reference resolution.
type IntersphinxConfig struct {
	// Mapping maps a project name to its inventory location (file path or URL).
	Mapping map[string]string `yaml:"mapping,omitempty"`

	// DisabledReftypes lists "domain:role" reference types that must not be
	// resolved against other projects. "*" disables all of them.
	DisabledReftypes []string `yaml:"disabled_reftypes,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, derrors.New(derrors.CategoryConfig, derrors.SeverityFatal,
			fmt.Sprintf("configuration file not found: %s", configPath))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to read config file")
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to unmarshal config")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Documentation"
	}
	if c.Site.RootDoc == "" {
		c.Site.RootDoc = "index"
	}
	if c.Source.Directory == "" {
		c.Source.Directory = "docs"
	}
	if c.Source.StaticDir == "" {
		c.Source.StaticDir = "_static"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./build"
	}
	if c.Output.StateFile == "" {
		c.Output.StateFile = ".docindex-state.db"
	}
	if c.Builder == "" {
		c.Builder = "html"
	}
	if c.InventoryFilename == "" {
		c.InventoryFilename = DefaultInventoryFilename
	}
}

// Validate checks invariants that would otherwise surface mid-build.
func (c *Config) Validate() error {
	if c.Source.Directory == "" {
		return derrors.ValidationError("source.directory must not be empty")
	}
	if c.Output.Directory == "" {
		return derrors.ValidationError("output.directory must not be empty")
	}
	if c.InventoryFilename == "" {
		return derrors.ValidationError("inventory_filename must not be empty")
	}
	for project, location := range c.Intersphinx.Mapping {
		if project == "" || location == "" {
			return derrors.ValidationError("intersphinx.mapping entries need a project name and a location")
		}
	}
	return nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Site: SiteConfig{
			Title:   "My Project",
			Version: "1.0",
			RootDoc: "index",
		},
		Source: SourceConfig{Directory: "docs"},
		Output: OutputConfig{Directory: "./build", Clean: true},
		Intersphinx: IntersphinxConfig{
			Mapping: map[string]string{
				"otherproject": "https://docs.example.com/objects.inv",
			},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// loadEnvFile loads environment variables from .env files when present.
// Values already set in the environment win.
func loadEnvFile() error {
	envPaths := []string{".env", ".env.local"}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		return godotenv.Load(envPath)
	}

	return fmt.Errorf("no .env file found")
}
