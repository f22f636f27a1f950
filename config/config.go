// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the q3cm.yaml settings file.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"q3cm/conlog"
	"q3cm/cvar"
	"q3cm/cvars"
)

// Config holds all tool settings.
type Config struct {
	Collision  CollisionConfig  `yaml:"collision"`
	Filesystem FilesystemConfig `yaml:"filesystem"`
	Logging    LoggingConfig    `yaml:"logging"`
	// Cvars are set verbatim after the collision settings.
	Cvars map[string]string `yaml:"cvars"`
}

// CollisionConfig mirrors the cm_* cvars.
type CollisionConfig struct {
	NoAreas         bool    `yaml:"no_areas"`
	NoCurves        bool    `yaml:"no_curves"`
	PlayerCurveClip bool    `yaml:"player_curve_clip"`
	PatchBevels     bool    `yaml:"patch_bevels"`
	PlaneEpsilon    float32 `yaml:"plane_epsilon"`
	BoxLeafCapacity int     `yaml:"box_leaf_capacity"`
}

// FilesystemConfig mirrors the fs_* cvars. Maps are searched in
// base_path/baseq3 and base_path/game.
type FilesystemConfig struct {
	BasePath string `yaml:"base_path"`
	Game     string `yaml:"game"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Quiet      bool   `yaml:"quiet"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	lc := conlog.DefaultConfig()
	return &Config{
		Collision: CollisionConfig{
			PlayerCurveClip: true,
			PlaneEpsilon:    0.1,
			BoxLeafCapacity: 1024,
		},
		Filesystem: FilesystemConfig{
			BasePath: ".",
		},
		Logging: LoggingConfig{
			Level:      lc.Level,
			MaxSizeMB:  lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAgeDays: lc.MaxAgeDays,
		},
	}
}

// Load loads configuration with priority: defaults < file. An empty path
// looks for q3cm.yaml in the working directory and the user config dir.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, errors.Wrapf(err, "loading config from %s", path)
		}
	}
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{"./q3cm.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "q3cm", "q3cm.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Apply copies the settings into the cvar registry.
func (c *Config) Apply() error {
	cc := c.Collision
	for _, s := range []struct {
		cv    *cvar.Cvar
		value string
	}{
		{cvars.CMNoAreas, boolString(cc.NoAreas)},
		{cvars.CMNoCurves, boolString(cc.NoCurves)},
		{cvars.CMPlayerCurveClip, boolString(cc.PlayerCurveClip)},
		{cvars.CMPatchBevels, boolString(cc.PatchBevels)},
		{cvars.CMPlaneEpsilon, strconv.FormatFloat(float64(cc.PlaneEpsilon), 'f', -1, 32)},
		{cvars.CMBoxLeafCapacity, strconv.Itoa(cc.BoxLeafCapacity)},
		{cvars.FSBasePath, c.Filesystem.BasePath},
		{cvars.FSGame, c.Filesystem.Game},
	} {
		s.cv.SetByString(s.value)
	}
	for name, value := range c.Cvars {
		if err := cvar.Set(name, value); err != nil {
			return errors.Wrap(err, "cvars")
		}
	}
	return nil
}

// LogConfig converts the logging section for conlog.Init.
func (c *Config) LogConfig() conlog.Config {
	return conlog.Config{
		Level:      c.Logging.Level,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Quiet:      c.Logging.Quiet,
	}
}
