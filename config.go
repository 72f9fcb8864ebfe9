package repel

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the startup parameters of the particle field.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Particles  ParticlesConfig  `yaml:"particles"`
	Repulsion  RepulsionConfig  `yaml:"repulsion"`
	Shaders    ShadersConfig    `yaml:"shaders"`
	Render     RenderConfig     `yaml:"render"`
	Simulation SimulationConfig `yaml:"simulation"`
	Debug      bool             `yaml:"debug"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// ParticlesConfig: Count is fixed for the life of the process.
type ParticlesConfig struct {
	Count int `yaml:"count"`
}

type RepulsionConfig struct {
	Radius   float32 `yaml:"radius"`
	Strength float32 `yaml:"strength"`
}

// ShadersConfig points at the program on disk. Main and Header must be set
// together; both empty selects the embedded shaders.
type ShadersConfig struct {
	Main   string `yaml:"main"`
	Header string `yaml:"header"`
}

type RenderConfig struct {
	ClearColor [4]float64 `yaml:"clear_color"`
}

type SimulationConfig struct {
	UseClock bool `yaml:"use_clock"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() *Config {
	cfg, err := LoadConfig("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// LoadConfig loads configuration from a YAML file over the embedded defaults.
// If path is empty, only the defaults are used.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Particles.Count < 1 {
		return fmt.Errorf("config: particles.count must be positive, got %d", c.Particles.Count)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Repulsion.Radius <= 0 {
		return fmt.Errorf("config: repulsion.radius must be positive, got %v", c.Repulsion.Radius)
	}
	if (c.Shaders.Main == "") != (c.Shaders.Header == "") {
		return fmt.Errorf("config: shaders.main and shaders.header must be set together")
	}
	return nil
}
