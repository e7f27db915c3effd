package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kliff/internal/config"
)

// configLoader centralizes config/theme loading so callers avoid duplicating merge logic.
type configLoader struct {
	defaultConfig func() ([]byte, error)
}

var cfgLoader = configLoader{defaultConfig: loadDefaultConfigYAML}

func loadMergedConfig(cfgPath string) (config.Config, error) {
	return cfgLoader.loadMergedConfig(cfgPath)
}

func loadDefaultConfigRaw() ([]byte, error) {
	return cfgLoader.loadDefaultConfigRaw()
}

func sanitizeConfig(cfg config.Config) config.Config {
	return cfgLoader.sanitizeConfig(cfg)
}

func addConfigComments(node *yaml.Node, cfg config.Config) {
	cfgLoader.addConfigComments(node, cfg)
}

func loadDefaultConfigYAML() ([]byte, error) {
	data := config.DefaultConfigYAML()
	if len(data) == 0 {
		return nil, fmt.Errorf("embedded default config is empty")
	}
	return data, nil
}

// loadMergedConfig decodes the defaults, overlays the user file at cfgPath
// (when set) and validates the result. Themes merge color by color, so a
// user file may override a single token of a built-in palette.
func (l configLoader) loadMergedConfig(cfgPath string) (config.Config, error) {
	var cfg config.Config

	defaultData, err := l.loadDefaultConfigRaw()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if err := yaml.Unmarshal(defaultData, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	if cfg.UI.Theme.Default == "" || len(cfg.UI.Themes) == 0 {
		return cfg, fmt.Errorf("default config is missing required theme defaults")
	}

	if cfgPath != "" {
		data, err := os.ReadFile(cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", cfgPath, err)
		}
		cfg, err = overlayConfig(cfg, data)
		if err != nil {
			return cfg, fmt.Errorf("config file %s: %w", cfgPath, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// overlayConfig decodes data on top of base. Unknown keys are rejected.
func overlayConfig(base config.Config, data []byte) (config.Config, error) {
	out := base.Clone()
	themes := out.UI.Themes
	out.UI.Themes = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return base, err
	}

	for name, override := range out.UI.Themes {
		themes[name] = mergeThemeConfig(themes[name], override)
	}
	out.UI.Themes = themes
	return out, nil
}

func mergeThemeConfig(base, override config.ThemeConfig) config.ThemeConfig {
	return base.Merge(override)
}

func (l configLoader) loadDefaultConfigRaw() ([]byte, error) {
	if l.defaultConfig != nil {
		return l.defaultConfig()
	}
	return loadDefaultConfigYAML()
}

// sanitizeConfig drops the fields populated at runtime so they do not appear
// in `kliff config` output.
func (l configLoader) sanitizeConfig(cfg config.Config) config.Config {
	out := cfg.Clone()
	out.App.Version = ""
	return out
}

// addConfigComments attaches the yamlcomment tag of every field as a head
// comment on its key.
func (l configLoader) addConfigComments(node *yaml.Node, cfg config.Config) {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	commentMapping(node, reflect.TypeOf(cfg))
}

func commentMapping(node *yaml.Node, t reflect.Type) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	switch t.Kind() {
	case reflect.Map:
		for i := 1; i < len(node.Content); i += 2 {
			commentMapping(node.Content[i], t.Elem())
		}
		return
	case reflect.Struct:
	default:
		return
	}

	fields := make(map[string]reflect.StructField, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name != "" && name != "-" {
			fields[name] = f
		}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		f, ok := fields[key.Value]
		if !ok {
			continue
		}
		if c := f.Tag.Get("yamlcomment"); c != "" {
			key.HeadComment = c
		}
		commentMapping(val, f.Type)
	}
}
