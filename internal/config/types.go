// Package config holds kliff's configuration schema and the embedded defaults.
package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/oakwood-commons/kliff/internal/suggest"
)

// Config is the merged configuration file.
type Config struct {
	App    AppConfig    `yaml:"app" json:"app" toml:"app"`
	Search SearchConfig `yaml:"search" json:"search" toml:"search"`
	Server ServerConfig `yaml:"server" json:"server" toml:"server"`
	UI     UIConfig     `yaml:"ui" json:"ui" toml:"ui"`
}

// AppConfig is application metadata shown in headers and help.
type AppConfig struct {
	Name    string `yaml:"name" json:"name" toml:"name" yamlcomment:"Application name"`
	Tagline string `yaml:"tagline,omitempty" json:"tagline,omitempty" toml:"tagline,omitempty" yamlcomment:"Shown under the logo"`
	// Version is populated at runtime from build info.
	Version string `yaml:"version,omitempty" json:"version,omitempty" toml:"version,omitempty"`
}

// SearchConfig tunes the suggestion engine and the result paginator.
type SearchConfig struct {
	MaxSuggestions int    `yaml:"max_suggestions" json:"max_suggestions" toml:"max_suggestions" yamlcomment:"Dropdown length cap"`
	DebounceMS     int    `yaml:"debounce_ms" json:"debounce_ms" toml:"debounce_ms" yamlcomment:"Quiet period before suggestions refresh"`
	BlurGraceMS    int    `yaml:"blur_grace_ms" json:"blur_grace_ms" toml:"blur_grace_ms" yamlcomment:"Delay before a blur closes the dropdown"`
	PageSize       int    `yaml:"page_size" json:"page_size" toml:"page_size" yamlcomment:"Results per page"`
	LatencyMS      int    `yaml:"latency_ms" json:"latency_ms" toml:"latency_ms" yamlcomment:"Simulated resolution latency (0 resolves immediately)"`
	TimeoutMS      int    `yaml:"timeout_ms" json:"timeout_ms" toml:"timeout_ms" yamlcomment:"Resolution timeout (0 disables)"`
	EnterPolicy    string `yaml:"enter_policy" json:"enter_policy" toml:"enter_policy" yamlcomment:"Enter with no selection submits the input (literal) or the top suggestion (top)"`
	CatalogFile    string `yaml:"catalog_file,omitempty" json:"catalog_file,omitempty" toml:"catalog_file,omitempty" yamlcomment:"Replace the built-in catalog with a YAML file"`
}

// Debounce returns DebounceMS as a duration.
func (s SearchConfig) Debounce() time.Duration { return ms(s.DebounceMS) }

// BlurGrace returns BlurGraceMS as a duration.
func (s SearchConfig) BlurGrace() time.Duration { return ms(s.BlurGraceMS) }

// Latency returns LatencyMS as a duration.
func (s SearchConfig) Latency() time.Duration { return ms(s.LatencyMS) }

// Timeout returns TimeoutMS as a duration.
func (s SearchConfig) Timeout() time.Duration { return ms(s.TimeoutMS) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// ServerConfig configures kliff serve.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr" toml:"addr" yamlcomment:"Listen address"`
}

// UIConfig holds theme selection and palettes.
type UIConfig struct {
	Theme  ThemeSelectionConfig   `yaml:"theme" json:"theme" toml:"theme"`
	Themes map[string]ThemeConfig `yaml:"themes" json:"themes" toml:"themes"`
}

// ThemeSelectionConfig names the theme used when no preference is stored.
type ThemeSelectionConfig struct {
	Default string `yaml:"default" json:"default" toml:"default" yamlcomment:"Theme used when no preference is saved"`
}

// Validate rejects values the engine and paginator cannot work with.
func (c Config) Validate() error {
	s := c.Search
	if s.MaxSuggestions <= 0 {
		return fmt.Errorf("search.max_suggestions must be positive, got %d", s.MaxSuggestions)
	}
	if s.DebounceMS <= 0 {
		return fmt.Errorf("search.debounce_ms must be positive, got %d", s.DebounceMS)
	}
	if s.BlurGraceMS < 0 {
		return fmt.Errorf("search.blur_grace_ms must not be negative, got %d", s.BlurGraceMS)
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be positive, got %d", s.PageSize)
	}
	if s.LatencyMS < 0 || s.TimeoutMS < 0 {
		return fmt.Errorf("search.latency_ms and search.timeout_ms must not be negative")
	}
	if _, err := suggest.ParseEnterPolicy(s.EnterPolicy); err != nil {
		return fmt.Errorf("search.enter_policy: %w", err)
	}
	if len(c.UI.Themes) == 0 {
		return fmt.Errorf("ui.themes must define at least one theme")
	}
	if _, ok := c.UI.Themes[c.UI.Theme.Default]; !ok {
		return fmt.Errorf("ui.theme.default %q is not defined in ui.themes", c.UI.Theme.Default)
	}
	for _, name := range c.ThemeNames() {
		if err := c.UI.Themes[name].Validate(); err != nil {
			return fmt.Errorf("ui.themes.%s: %w", name, err)
		}
	}
	return nil
}

// ThemeNames returns the configured theme names, sorted.
func (c Config) ThemeNames() []string {
	names := make([]string, 0, len(c.UI.Themes))
	for name := range c.UI.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextTheme returns the theme after current in name order, wrapping around.
// An unknown current starts from the default.
func (c Config) NextTheme(current string) string {
	names := c.ThemeNames()
	if len(names) == 0 {
		return current
	}
	if _, ok := c.UI.Themes[current]; !ok {
		current = c.UI.Theme.Default
	}
	for i, name := range names {
		if name == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// ResolveTheme picks the preferred theme if it exists, else the default.
func (c Config) ResolveTheme(preferred string) (string, ThemeConfig) {
	if th, ok := c.UI.Themes[preferred]; ok {
		return preferred, th
	}
	return c.UI.Theme.Default, c.UI.Themes[c.UI.Theme.Default]
}
