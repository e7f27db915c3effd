package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ColorValue stores a color token, either "#rrggbb" or an ANSI 256 index,
// and marshals numerics as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(strings.TrimSpace(value.Value))
	return nil
}

// Validate accepts "#rgb", "#rrggbb" or 0-255.
func (c ColorValue) Validate() error {
	s := string(c)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return fmt.Errorf("ANSI color %d out of range 0-255", n)
		}
		return nil
	}
	if !strings.HasPrefix(s, "#") || (len(s) != 4 && len(s) != 7) {
		return fmt.Errorf("color %q must be #rgb, #rrggbb or 0-255", s)
	}
	if _, err := strconv.ParseUint(s[1:], 16, 32); err != nil {
		return fmt.Errorf("color %q is not valid hex", s)
	}
	return nil
}

var ansi16 = [16]string{
	"#000000", "#800000", "#008000", "#808000", "#000080", "#800080", "#008080", "#c0c0c0",
	"#808080", "#ff0000", "#00ff00", "#ffff00", "#0000ff", "#ff00ff", "#00ffff", "#ffffff",
}

// Hex returns the color as "#rrggbb" for use outside the terminal. ANSI
// indexes map through the xterm 256 palette. Invalid values return "".
func (c ColorValue) Hex() string {
	if c.Validate() != nil || c == "" {
		return ""
	}
	s := string(c)
	if strings.HasPrefix(s, "#") {
		if len(s) == 4 {
			return strings.ToLower("#" + s[1:2] + s[1:2] + s[2:3] + s[2:3] + s[3:4] + s[3:4])
		}
		return strings.ToLower(s)
	}
	n, _ := strconv.Atoi(s)
	switch {
	case n < 16:
		return ansi16[n]
	case n < 232:
		n -= 16
		level := func(v int) int {
			if v == 0 {
				return 0
			}
			return 55 + v*40
		}
		return fmt.Sprintf("#%02x%02x%02x", level(n/36), level(n/6%6), level(n%6))
	default:
		g := 8 + (n-232)*10
		return fmt.Sprintf("#%02x%02x%02x", g, g, g)
	}
}

// ThemeConfig is one palette, shared by the terminal and HTML surfaces.
type ThemeConfig struct {
	Background ColorValue `yaml:"background" json:"background" toml:"background" yamlcomment:"Page background"`
	Surface    ColorValue `yaml:"surface" json:"surface" toml:"surface" yamlcomment:"Cards and dropdown background"`
	Text       ColorValue `yaml:"text" json:"text" toml:"text" yamlcomment:"Body text"`
	Muted      ColorValue `yaml:"muted" json:"muted" toml:"muted" yamlcomment:"URLs, meta lines and hints"`
	Accent     ColorValue `yaml:"accent" json:"accent" toml:"accent" yamlcomment:"Titles and links"`
	Highlight  ColorValue `yaml:"highlight" json:"highlight" toml:"highlight" yamlcomment:"Matched text"`
	SelectedFG ColorValue `yaml:"selected_fg" json:"selected_fg" toml:"selected_fg" yamlcomment:"Selected suggestion foreground"`
	SelectedBG ColorValue `yaml:"selected_bg" json:"selected_bg" toml:"selected_bg" yamlcomment:"Selected suggestion background"`
	Border     ColorValue `yaml:"border" json:"border" toml:"border" yamlcomment:"Input and card borders"`
	Error      ColorValue `yaml:"error" json:"error" toml:"error" yamlcomment:"Error flash"`
}

// Validate checks every color token.
func (t ThemeConfig) Validate() error {
	fields := []struct {
		name string
		val  ColorValue
	}{
		{"background", t.Background},
		{"surface", t.Surface},
		{"text", t.Text},
		{"muted", t.Muted},
		{"accent", t.Accent},
		{"highlight", t.Highlight},
		{"selected_fg", t.SelectedFG},
		{"selected_bg", t.SelectedBG},
		{"border", t.Border},
		{"error", t.Error},
	}
	for _, f := range fields {
		if err := f.val.Validate(); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// Merge overlays the non-empty colors of override onto t.
func (t ThemeConfig) Merge(override ThemeConfig) ThemeConfig {
	out := t
	apply := func(src ColorValue, dst *ColorValue) {
		if src != "" {
			*dst = src
		}
	}
	apply(override.Background, &out.Background)
	apply(override.Surface, &out.Surface)
	apply(override.Text, &out.Text)
	apply(override.Muted, &out.Muted)
	apply(override.Accent, &out.Accent)
	apply(override.Highlight, &out.Highlight)
	apply(override.SelectedFG, &out.SelectedFG)
	apply(override.SelectedBG, &out.SelectedBG)
	apply(override.Border, &out.Border)
	apply(override.Error, &out.Error)
	return out
}
