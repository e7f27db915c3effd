package config

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     Config
	embeddedConfigErr  error
)

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// EmbeddedDefault parses the embedded defaults. Callers get their own copy of
// the themes map.
func EmbeddedDefault() (Config, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &embeddedConfig); err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	if embeddedConfigErr != nil {
		return Config{}, embeddedConfigErr
	}
	return embeddedConfig.Clone(), nil
}

// Clone copies c so that its themes map can be modified independently.
func (c Config) Clone() Config {
	out := c
	out.UI.Themes = make(map[string]ThemeConfig, len(c.UI.Themes))
	for k, v := range c.UI.Themes {
		out.UI.Themes[k] = v
	}
	return out
}
