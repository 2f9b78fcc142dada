package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Variant selects which scene renderer drives the surface.
type Variant string

const (
	Variant2D Variant = "2d"
	Variant3D Variant = "3d"
)

// Config is the user-tunable runtime configuration.
type Config struct {
	Variant Variant `yaml:"variant"`
	Theme   string  `yaml:"theme"`
	FPS     int     `yaml:"fps"`
	Volume  float64 `yaml:"volume"`

	// RecordDir, when set, receives every rendered frame as a PNG.
	RecordDir string `yaml:"record_dir"`
	// HeadlessFrames renders that many frames without the terminal UI.
	HeadlessFrames int `yaml:"headless_frames"`

	Demo  bool `yaml:"-"`
	Debug bool `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Variant: Variant2D,
		Theme:   "cosmic",
		FPS:     60,
		Volume:  0.7,
	}
}

// LoadFile overlays the YAML document at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// TryLoadDefault loads the first config file found in the usual places.
// It returns the path it loaded, or "" when none was found.
func (c *Config) TryLoadDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	paths := []string{
		filepath.Join(home, ".config", "mngviz", "config.yaml"),
		filepath.Join(home, ".config", "mngviz", "config.yml"),
		filepath.Join(home, ".mngviz.yaml"),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, c.LoadFile(p)
		}
	}
	return "", nil
}

var (
	ErrVariant = errors.New("variant must be 2d or 3d")
	ErrFPS     = errors.New("fps must be between 1 and 240")
	ErrVolume  = errors.New("volume must be between 0 and 1")
)

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch c.Variant {
	case Variant2D, Variant3D:
	default:
		return fmt.Errorf("%w: got %q", ErrVariant, c.Variant)
	}
	if c.FPS < 1 || c.FPS > 240 {
		return fmt.Errorf("%w: got %d", ErrFPS, c.FPS)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: got %g", ErrVolume, c.Volume)
	}
	if c.HeadlessFrames < 0 {
		return fmt.Errorf("headless frame count must not be negative: got %d", c.HeadlessFrames)
	}
	return nil
}
