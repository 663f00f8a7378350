// Package config loads program configuration: an embedded YAML template
// provides defaults which an optional user file overrides.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/rupor-github/gencfg"
	"gopkg.in/yaml.v3"

	"boxlayout/pkg/css"
	"boxlayout/pkg/layout"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

// ErrBadColor is returned for render colors that do not parse.
var ErrBadColor = errors.New("invalid color")

type (
	ViewportConfig struct {
		Width  float64 `yaml:"width" validate:"gt=0"`
		Height float64 `yaml:"height" validate:"gt=0"`
	}

	LayoutConfig struct {
		MaxDepth         int  `yaml:"max_depth" validate:"min=1"`
		StrictProperties bool `yaml:"strict_properties"`
	}

	TextConfig struct {
		FontPath    string  `yaml:"font_path" validate:"omitempty,file"`
		DefaultSize float64 `yaml:"default_size" validate:"gt=0"`
	}

	RenderConfig struct {
		Background   string `yaml:"background" validate:"required"`
		Outlines     bool   `yaml:"outlines"`
		OutlineColor string `yaml:"outline_color" validate:"required"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Viewport ViewportConfig `yaml:"viewport"`
		Layout   LayoutConfig   `yaml:"layout"`
		Text     TextConfig     `yaml:"text"`
		Render   RenderConfig   `yaml:"render"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields defined above are accepted
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
		if _, err := cfg.Render.Colors(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration expands the embedded template for defaults, lays the
// file at path (if any) over it and validates the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns the expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// ViewportRect returns the layout viewport rectangle.
func (c *Config) ViewportRect() layout.Rect {
	return layout.Rect{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

// RenderColors holds the parsed render colors.
type RenderColors struct {
	Background color.RGBA
	Outline    color.RGBA
}

// Colors parses the configured render colors with the style color syntax.
func (r *RenderConfig) Colors() (RenderColors, error) {
	bg, ok := css.ParseColor(r.Background)
	if !ok {
		return RenderColors{}, fmt.Errorf("%w: render background %q", ErrBadColor, r.Background)
	}
	outline, ok := css.ParseColor(r.OutlineColor)
	if !ok {
		return RenderColors{}, fmt.Errorf("%w: render outline color %q", ErrBadColor, r.OutlineColor)
	}
	return RenderColors{Background: bg, Outline: outline}, nil
}
