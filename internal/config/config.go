package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"voxelspace/internal/camera"
	"voxelspace/internal/raster"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir" yaml:"base_dir"`
	HeightMap string `json:"height_map" yaml:"height_map"`
	ColorMap  string `json:"color_map" yaml:"color_map"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
	FitMaps   bool   `json:"fit_maps" yaml:"fit_maps"`

	// Generated terrain, used when no map paths are set
	MapSize int   `json:"map_size" yaml:"map_size"`
	Seed    int64 `json:"seed" yaml:"seed"`

	// Render settings
	ScreenWidth  int     `json:"screen_width" yaml:"screen_width"`
	ScreenHeight int     `json:"screen_height" yaml:"screen_height"`
	CellSize     int     `json:"cell_size" yaml:"cell_size"`
	MaxDistance  float64 `json:"max_distance" yaml:"max_distance"`
	FieldOfView  float64 `json:"field_of_view" yaml:"field_of_view"`
	Scale        float64 `json:"scale" yaml:"scale"`
	Background   string  `json:"background" yaml:"background"`
	Format       string  `json:"format" yaml:"format"`
	Workers      int     `json:"workers" yaml:"workers"`
	TickMS       int     `json:"tick_ms" yaml:"tick_ms"`

	Camera Camera `json:"camera" yaml:"camera"`

	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`
	LogLevel    string `json:"log_level" yaml:"log_level"`
}

// Camera is the starting pose.
type Camera struct {
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Z       float64 `json:"z" yaml:"z"`
	Angle   float64 `json:"angle" yaml:"angle"`
	Pitch   float64 `json:"pitch" yaml:"pitch"`
	Horizon float64 `json:"horizon" yaml:"horizon"`
	Height  float64 `json:"height" yaml:"height"`
	ZFar    float64 `json:"z_far" yaml:"z_far"`
}

// Load reads a JSON or YAML (by extension) config file.
// Fields not set in the file keep their zero values; relative paths are
// resolved against the file's directory unless base_dir is set.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	HeightMap   string
	ColorMap    string
	OutputDir   string
	Format      string
	Workers     int
	Seed        int64
	TickMS      int
	MetricsAddr string
	LogLevel    string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.HeightMap != "" {
		c.HeightMap = flags.HeightMap
	}
	if flags.ColorMap != "" {
		c.ColorMap = flags.ColorMap
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.TickMS > 0 {
		c.TickMS = flags.TickMS
	}
	if flags.MetricsAddr != "" {
		c.MetricsAddr = flags.MetricsAddr
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.HeightMap = c.resolvePath(c.HeightMap)
		c.ColorMap = c.resolvePath(c.ColorMap)
		c.OutputDir = c.resolvePath(c.OutputDir)
	}
	if c.OutputDir == "" {
		c.OutputDir = "frames"
	}

	// Defaults for terrain and render settings
	if c.MapSize <= 0 {
		c.MapSize = 1024
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.ScreenWidth <= 0 {
		c.ScreenWidth = 320
	}
	if c.ScreenHeight <= 0 {
		c.ScreenHeight = 200
	}
	if c.CellSize <= 0 {
		c.CellSize = 2
	}
	if c.MaxDistance <= 0 {
		c.MaxDistance = raster.DefaultDistance
	}
	if c.FieldOfView <= 0 {
		c.FieldOfView = raster.DefaultFieldOfView
	}
	if c.Scale <= 0 {
		c.Scale = raster.DefaultScale
	}
	if c.Background == "" {
		c.Background = "#87ceeb"
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TickMS <= 0 {
		c.TickMS = 50
	}

	// Start above the map centre, looking over the terrain
	if c.Camera.X == 0 && c.Camera.Y == 0 {
		c.Camera.X = float64(c.MapSize) / 2
		c.Camera.Y = float64(c.MapSize) / 2
	}
	if c.Camera.Z == 0 {
		c.Camera.Z = 300
	}
	if c.Camera.Horizon == 0 {
		c.Camera.Horizon = float64(c.ScreenHeight) / 3
	}
	if c.Camera.Height == 0 {
		c.Camera.Height = 20
	}
}

// Maps reports whether terrain comes from files rather than the generator.
func (c *Config) Maps() bool {
	return c.HeightMap != "" && c.ColorMap != ""
}

// Screen returns the render screen described by the config.
func (c *Config) Screen() raster.Screen {
	return raster.Screen{
		Width:       c.ScreenWidth,
		Height:      c.ScreenHeight,
		CellSize:    c.CellSize,
		MaxDistance: c.MaxDistance,
		FieldOfView: c.FieldOfView,
		Scale:       c.Scale,
	}
}

// StartPose returns the initial camera pose.
func (c *Config) StartPose() camera.Pose {
	return camera.Pose{
		X:       c.Camera.X,
		Y:       c.Camera.Y,
		Z:       c.Camera.Z,
		Angle:   c.Camera.Angle,
		Pitch:   c.Camera.Pitch,
		Horizon: c.Camera.Horizon,
		Height:  c.Camera.Height,
		ZFar:    c.Camera.ZFar,
	}
}

// Tick is the simulated time per movement step.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

// BackgroundColor parses Background as #rrggbb or #rrggbbaa.
func (c *Config) BackgroundColor() (color.NRGBA, error) {
	return ParseHexColor(c.Background)
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b, a uint8 = 0, 0, 0, 255
	var err error
	switch len(hex) {
	case 3:
		_, err = fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b)
		r, g, b = r*17, g*17, b*17
	case 6:
		_, err = fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	case 8:
		_, err = fmt.Sscanf(hex, "%02x%02x%02x%02x", &r, &g, &b, &a)
	default:
		err = fmt.Errorf("want 3, 6 or 8 hex digits")
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("config: color %q: %w", s, err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

func (c *Config) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}
