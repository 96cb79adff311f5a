// Package config handles repository configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openjournaltheme/scholarfix/internal/citation"
)

const (
	RepoDir      = ".scholarfix"
	ConfigFile   = "config.yml"
	ArticlesFile = "articles.jsonl"
	CacheDir     = "cache"
	DBFile       = "articles.db"
)

// Defaults applied to unset fields.
const (
	DefaultLocale    = "en_US"
	DefaultListen    = "127.0.0.1:8080"
	DefaultRateLimit = 10.0
	DefaultRateBurst = 20
)

// Environment variables that override the config file.
const (
	EnvRoot    = "SFX_ROOT"
	EnvBaseURL = "SFX_BASE_URL"
	EnvLocale  = "SFX_LOCALE"
	EnvListen  = "SFX_LISTEN"
)

// ErrNotRepository is returned when no repository is found.
var ErrNotRepository = errors.New("not in a scholarfix repository (no .scholarfix directory found)")

// Config represents repository configuration stored in .scholarfix/config.yml.
type Config struct {
	BaseURL          string              `json:"base_url" yaml:"base_url"`
	Locale           string              `json:"locale" yaml:"locale"`
	FamilyNameFirst  bool                `json:"family_name_first" yaml:"family_name_first"`
	PreferPublicName bool                `json:"prefer_public_name" yaml:"prefer_public_name"`
	Identifiers      []citation.Provider `json:"identifiers" yaml:"identifiers"`
	Journal          Journal             `json:"journal" yaml:"journal"`
	PDFRoot          string              `json:"pdf_root,omitempty" yaml:"pdf_root,omitempty"`
	Listen           string              `json:"listen" yaml:"listen"`
	RateLimit        float64             `json:"rate_limit" yaml:"rate_limit"`
	RateBurst        int                 `json:"rate_burst" yaml:"rate_burst"`
}

// Journal describes the publishing journal.
type Journal struct {
	Name          map[string]string `json:"name" yaml:"name"`
	PrimaryLocale string            `json:"primary_locale" yaml:"primary_locale"`
	OnlineISSN    string            `json:"online_issn,omitempty" yaml:"online_issn,omitempty"`
	PrintISSN     string            `json:"print_issn,omitempty" yaml:"print_issn,omitempty"`
	ISSN          string            `json:"issn,omitempty" yaml:"issn,omitempty"`
}

// Citation converts the journal to its citation form.
func (j Journal) Citation() *citation.Journal {
	return &citation.Journal{
		Name:          citation.LocalizedText(j.Name),
		PrimaryLocale: j.PrimaryLocale,
		OnlineISSN:    j.OnlineISSN,
		PrintISSN:     j.PrintISSN,
		ISSN:          j.ISSN,
	}
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.Journal.PrimaryLocale == "" {
		c.Journal.PrimaryLocale = c.Locale
	}
	if c.Identifiers == nil {
		c.Identifiers = []citation.Provider{
			{Type: "doi", Display: "DOI"},
			{Type: "other::urn", Display: "URN"},
		}
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateBurst == 0 {
		c.RateBurst = DefaultRateBurst
	}
}

// ApplyEnv overrides fields from SFX_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvLocale); v != "" {
		c.Locale = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
}

// Providers returns the configured identifier providers.
func (c *Config) Providers() []citation.IdentifierProvider {
	out := make([]citation.IdentifierProvider, len(c.Identifiers))
	for i, p := range c.Identifiers {
		out[i] = p
	}
	return out
}

// SynthesizerOptions returns the author name formatting options.
func (c *Config) SynthesizerOptions() citation.Options {
	return citation.Options{
		FamilyNameFirst:  c.FamilyNameFirst,
		PreferPublicName: c.PreferPublicName,
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base_url: %q (want an absolute URL)", c.BaseURL)
		}
	}
	if strings.TrimSpace(c.Locale) == "" {
		return fmt.Errorf("locale must not be empty")
	}
	for i, p := range c.Identifiers {
		if p.Type == "" || p.Display == "" {
			return fmt.Errorf("identifiers[%d]: type and display are required", i)
		}
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("rate_limit and rate_burst must not be negative")
	}
	return nil
}

// RepoPath returns the path to the .scholarfix directory from a root path.
func RepoPath(root string) string {
	return filepath.Join(root, RepoDir)
}

// ConfigPath returns the path to config.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RepoDir, ConfigFile)
}

// ArticlesPath returns the path to articles.jsonl from a root path.
func ArticlesPath(root string) string {
	return filepath.Join(root, RepoDir, ArticlesFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir)
}

// DBPath returns the path to articles.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a scholarfix repository.
func IsRepository(root string) bool {
	info, err := os.Stat(RepoPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a repository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root, fills in
// defaults and applies environment overrides. A missing config file yields
// the defaults.
func Load(root string) (*Config, error) {
	cfg, err := read(root)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile is Load without environment overrides. Use it for configs that
// are saved back to disk.
func LoadFile(root string) (*Config, error) {
	cfg, err := read(root)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(root string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(ConfigPath(root))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyDefaults()
	cfg.PDFRoot = ExpandPath(cfg.PDFRoot)
	return cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
