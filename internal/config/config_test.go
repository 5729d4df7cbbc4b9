package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Backend != BackendOpenGL {
		t.Errorf("expected backend opengl, got %s", cfg.Graphics.Backend)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Physics.Gravity != (Vector{0, -10, 0}) {
		t.Errorf("expected gravity (0,-10,0), got %v", cfg.Physics.Gravity)
	}
	if cfg.Physics.TickRate != 60 {
		t.Errorf("expected tick rate 60, got %d", cfg.Physics.TickRate)
	}
	if cfg.Physics.RayLength != 10000 {
		t.Errorf("expected ray length 10000, got %f", cfg.Physics.RayLength)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  backend: "wgsl"
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

physics:
  gravity: {x: 0, y: -9.5, z: 0}
  tick_rate: 120
  debug_draw: true

assets:
  root: "/data"
  watch: true

logging:
  level: "debug"
  log_file: "engine.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Backend != BackendWGSL {
		t.Errorf("expected backend wgsl, got %s", cfg.Graphics.Backend)
	}
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Physics.Gravity.Y != -9.5 {
		t.Errorf("expected gravity y -9.5, got %f", cfg.Physics.Gravity.Y)
	}
	if cfg.Physics.TickRate != 120 {
		t.Errorf("expected tick rate 120, got %d", cfg.Physics.TickRate)
	}
	if !cfg.Physics.DebugDraw {
		t.Error("expected debug_draw to be true")
	}
	// Not in file, default survives the merge
	if cfg.Physics.RayLength != 10000 {
		t.Errorf("expected default ray length, got %f", cfg.Physics.RayLength)
	}

	if cfg.Assets.Root != "/data" || !cfg.Assets.Watch {
		t.Errorf("unexpected assets config %+v", cfg.Assets)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "engine.log" {
		t.Errorf("expected log file 'engine.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
[graphics]
backend = "d3d12"
width = 800

[physics]
tick_rate = 30

[physics.gravity]
x = 1.0
y = -2.0
z = 0.0
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Backend != BackendD3D12 {
		t.Errorf("expected backend d3d12, got %s", cfg.Graphics.Backend)
	}
	if cfg.Graphics.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected default height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Physics.TickRate != 30 {
		t.Errorf("expected tick rate 30, got %d", cfg.Physics.TickRate)
	}
	if cfg.Physics.Gravity != (Vector{1, -2, 0}) {
		t.Errorf("expected gravity (1,-2,0), got %v", cfg.Physics.Gravity)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Graphics.Backend = "vulkan" }},
		{"zero tick rate", func(c *Config) { c.Physics.TickRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Graphics.Backend = BackendWGSL
			cfg.Physics.TickRate = 90
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo failed: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("reload failed: %v", err)
			}
			if loaded.Graphics.Backend != BackendWGSL || loaded.Physics.TickRate != 90 {
				t.Errorf("unexpected reloaded config %+v", loaded)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[graphics]\nwidth = 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path != "./config.toml" {
		t.Errorf("expected to find config.toml in current directory, got %q", path)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "backend flag",
			setup: func() { *flagBackend = BackendD3D12 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Backend != BackendD3D12 {
					t.Errorf("expected backend d3d12, got %s", cfg.Graphics.Backend)
				}
			},
			teardown: func() { *flagBackend = "" },
		},
		{
			name:  "headless and debug draw flags",
			setup: func() { *flagHeadless = true; *flagDebugDraw = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Headless {
					t.Error("expected headless with headless flag")
				}
				if !cfg.Physics.DebugDraw {
					t.Error("expected debug draw with debug-draw flag")
				}
			},
			teardown: func() { *flagHeadless = false; *flagDebugDraw = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Graphics.Width)
				}
				if cfg.Graphics.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}
