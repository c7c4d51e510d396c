// Package config handles render engine configuration loading and management.
package config

import "time"

// Config holds all render engine settings.
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// DisplayConfig describes the destination surface.
type DisplayConfig struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	WideGamut bool `yaml:"wide_gamut"`
}

// CacheConfig holds program cache settings.
type CacheConfig struct {
	// Prime generates the common program variants at startup.
	Prime         bool `yaml:"prime"`
	SlowCompileMS int  `yaml:"slow_compile_ms"`
}

// SlowCompile returns the slow generation threshold, or 0 if disabled.
func (c CacheConfig) SlowCompile() time.Duration {
	if c.SlowCompileMS <= 0 {
		return 0
	}
	return time.Duration(c.SlowCompileMS) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:     1080,
			Height:    1920,
			WideGamut: false,
		},
		Cache: CacheConfig{
			Prime:         true,
			SlowCompileMS: 16,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
