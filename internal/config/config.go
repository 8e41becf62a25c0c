// Package config handles dspftool configuration loading and management.
package config

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Config holds all tool settings.
type Config struct {
	Codec   CodecConfig   `yaml:"codec"`
	Export  ExportConfig  `yaml:"export"`
	Pack    PackConfig    `yaml:"pack"`
	Logging LoggingConfig `yaml:"logging"`
}

// CodecConfig holds display file codec settings.
type CodecConfig struct {
	ByteOrder   string `yaml:"byte_order"`   // "little" or "big"
	BufferLimit int64  `yaml:"buffer_limit"` // Largest data section read into memory, 0 streams always
}

// ExportConfig holds mesh export settings.
type ExportConfig struct {
	Origin     [3]float32 `yaml:"origin"`
	CellSize   [3]float32 `yaml:"cell_size"`
	Thresholds []int      `yaml:"thresholds"` // Empty exports every threshold
}

// PackConfig holds archive settings.
type PackConfig struct {
	Level int `yaml:"level"` // zstd level, 1-22
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Codec: CodecConfig{
			ByteOrder:   "little",
			BufferLimit: 4 << 20,
		},
		Export: ExportConfig{
			CellSize: [3]float32{1, 1, 1},
		},
		Pack: PackConfig{
			Level: 3,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Order returns the binary byte order named by ByteOrder.
func (c CodecConfig) Order() (binary.ByteOrder, error) {
	switch strings.ToLower(c.ByteOrder) {
	case "", "little", "le":
		return binary.LittleEndian, nil
	case "big", "be":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", c.ByteOrder)
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.Codec.Order(); err != nil {
		return err
	}
	if c.Pack.Level < 1 || c.Pack.Level > 22 {
		return fmt.Errorf("pack level %d out of range 1-22", c.Pack.Level)
	}
	for i, s := range c.Export.CellSize {
		if s <= 0 {
			return fmt.Errorf("export cell size axis %d must be positive, got %v", i, s)
		}
	}
	return nil
}
