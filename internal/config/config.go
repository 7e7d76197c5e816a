// Package config handles loading the run configuration.
//
// The file is the classic JSON configuration of the simulation. It is read
// with a YAML decoder, which accepts JSON as well as YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration structure.
type Config struct {
	Cameras      CamerasConfig `yaml:"Cameras"`
	LiDarWorkers LiDARsConfig  `yaml:"LiDarWorkers"`
	PoseJSONFile string        `yaml:"poseJsonFile"`
	TickTime     float64       `yaml:"TickTime"` // seconds
	Duration     int           `yaml:"Duration"` // ticks
	OutputDir    string        `yaml:"outputDir,omitempty"`
	TickInterval time.Duration `yaml:"tickInterval,omitempty"` // overrides TickTime
}

// CamerasConfig lists the cameras and the file holding their recordings.
type CamerasConfig struct {
	Configurations []CameraConfig `yaml:"CamerasConfigurations"`
	DataPath       string         `yaml:"camera_datas_path"`
}

// CameraConfig defines one camera.
type CameraConfig struct {
	ID        int    `yaml:"id"`
	Frequency int    `yaml:"frequency"`
	Key       string `yaml:"camera_key"` // recording key in the camera data file
}

// LiDARsConfig lists the LiDAR trackers and their shared recording.
type LiDARsConfig struct {
	Configurations []LiDARConfig `yaml:"LidarConfigurations"`
	DataPath       string        `yaml:"lidars_data_path"`
}

// LiDARConfig defines one LiDAR tracker.
type LiDARConfig struct {
	ID        int `yaml:"id"`
	Frequency int `yaml:"frequency"`
}

// LoadConfig reads, resolves and validates a configuration file. Relative
// paths are taken relative to the file's directory; the output directory
// defaults to it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Resolve(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve makes every relative path absolute against base.
func (c *Config) Resolve(base string) {
	c.Cameras.DataPath = resolve(base, c.Cameras.DataPath)
	c.LiDarWorkers.DataPath = resolve(base, c.LiDarWorkers.DataPath)
	c.PoseJSONFile = resolve(base, c.PoseJSONFile)
	if c.OutputDir == "" {
		c.OutputDir = base
	} else {
		c.OutputDir = resolve(base, c.OutputDir)
	}
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("Duration must be positive, got %d", c.Duration))
	}
	if c.TickTime < 0 {
		errs = append(errs, fmt.Errorf("TickTime must not be negative, got %v", c.TickTime))
	}
	if c.TickInterval < 0 {
		errs = append(errs, fmt.Errorf("tickInterval must not be negative, got %v", c.TickInterval))
	}
	if c.PoseJSONFile == "" {
		errs = append(errs, errors.New("poseJsonFile is required"))
	}

	seen := make(map[int]bool)
	for i, cam := range c.Cameras.Configurations {
		if seen[cam.ID] {
			errs = append(errs, fmt.Errorf("camera %d: duplicate id %d", i, cam.ID))
		}
		seen[cam.ID] = true
		if cam.Frequency < 0 {
			errs = append(errs, fmt.Errorf("camera %d: frequency must not be negative", cam.ID))
		}
		if cam.Key == "" {
			errs = append(errs, fmt.Errorf("camera %d: camera_key is required", cam.ID))
		}
	}
	if len(c.Cameras.Configurations) > 0 && c.Cameras.DataPath == "" {
		errs = append(errs, errors.New("camera_datas_path is required when cameras are configured"))
	}

	seen = make(map[int]bool)
	for i, l := range c.LiDarWorkers.Configurations {
		if seen[l.ID] {
			errs = append(errs, fmt.Errorf("lidar %d: duplicate id %d", i, l.ID))
		}
		seen[l.ID] = true
		if l.Frequency < 0 {
			errs = append(errs, fmt.Errorf("lidar %d: frequency must not be negative", l.ID))
		}
	}
	if len(c.LiDarWorkers.Configurations) > 0 && c.LiDarWorkers.DataPath == "" {
		errs = append(errs, errors.New("lidars_data_path is required when LiDARs are configured"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// TickDuration is the wall-clock spacing between ticks.
func (c *Config) TickDuration() time.Duration {
	if c.TickInterval > 0 {
		return c.TickInterval
	}
	return time.Duration(c.TickTime * float64(time.Second))
}
