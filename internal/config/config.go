// Package config holds the settings shared by the statsbench commands.
//
// Values come from Default, are overridden by an optional YAML file, and
// finally by command line flags.
package config

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/leengari/statsbench/internal/domain/errors"
	"github.com/leengari/statsbench/internal/logging"
	"github.com/leengari/statsbench/internal/stats"
	"github.com/leengari/statsbench/internal/storage/cache"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	SeqURL string `yaml:"seq_url"`
}

type Config struct {
	DataDir  string    `yaml:"data_dir"`
	TryCache bool      `yaml:"try_cache"`
	Columns  string    `yaml:"columns"`
	Codec    string    `yaml:"codec"`
	Log      LogConfig `yaml:"log"`
}

func Default() Config {
	return Config{
		DataDir:  stats.DefaultDataDir,
		TryCache: true,
		Columns:  string(stats.ColumnsAll),
		Codec:    "parquet",
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file from fsys over the defaults. Unknown keys are
// rejected.
func Load(fsys afero.Fs, path string) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping cfg's values for absent keys
func Parse(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return &errors.ConfigError{Field: "data_dir", Reason: "must not be empty"}
	}
	if _, err := stats.ParseColumnMode(c.Columns); err != nil {
		return err
	}
	if _, err := cache.CodecByName(c.Codec); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &errors.ConfigError{Field: "log.level", Value: c.Log.Level, Reason: err.Error()}
	}
	return nil
}

// LoadOptions converts the configuration into loader options
func (c Config) LoadOptions() (stats.LoadOptions, error) {
	if err := c.Validate(); err != nil {
		return stats.LoadOptions{}, err
	}

	mode, _ := stats.ParseColumnMode(c.Columns)
	codec, _ := cache.CodecByName(c.Codec)

	return stats.LoadOptions{
		DataDir:  c.DataDir,
		TryCache: c.TryCache,
		Columns:  mode,
		Codec:    codec,
	}, nil
}
