// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics" toml:"graphics"`
	Physics  PhysicsConfig  `yaml:"physics" toml:"physics"`
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// Backend names accepted in GraphicsConfig.Backend.
const (
	BackendOpenGL = "opengl"
	BackendD3D12  = "d3d12"
	BackendWGSL   = "wgsl"
)

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Backend    string `yaml:"backend" toml:"backend"`
	Title      string `yaml:"title" toml:"title"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
	Headless   bool   `yaml:"headless" toml:"headless"` // No window, commands are only counted
}

// Vector is a plain xyz triple as written in config files.
type Vector struct {
	X float32 `yaml:"x" toml:"x"`
	Y float32 `yaml:"y" toml:"y"`
	Z float32 `yaml:"z" toml:"z"`
}

// PhysicsConfig holds simulation settings.
type PhysicsConfig struct {
	Gravity   Vector  `yaml:"gravity" toml:"gravity"`
	TickRate  int     `yaml:"tick_rate" toml:"tick_rate"` // Fixed steps per second
	DebugDraw bool    `yaml:"debug_draw" toml:"debug_draw"`
	RayLength float32 `yaml:"ray_length" toml:"ray_length"`
}

// AssetsConfig holds resource lookup settings.
type AssetsConfig struct {
	Root  string `yaml:"root" toml:"root"`
	Watch bool   `yaml:"watch" toml:"watch"` // Drop cached files when they change on disk
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Backend:    BackendOpenGL,
			Title:      "Iris",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Physics: PhysicsConfig{
			Gravity:   Vector{X: 0, Y: -10, Z: 0},
			TickRate:  60,
			DebugDraw: false,
			RayLength: 10000,
		},
		Assets: AssetsConfig{
			Root:  "assets",
			Watch: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
