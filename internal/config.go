package internal

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tuannm99/lhindex/internal/linearhash"
)

type LhConfig struct {
	Storage struct {
		Dir  string `mapstructure:"dir"`
		File string `mapstructure:"file"`
	} `mapstructure:"storage"`
	Index struct {
		SplitThreshold float64 `mapstructure:"split_threshold"`
	} `mapstructure:"index"`
	Log struct {
		Debug bool `mapstructure:"debug"`
	} `mapstructure:"log"`
}

// IndexPath joins the configured directory and file name.
func (c *LhConfig) IndexPath() string {
	return filepath.Join(c.Storage.Dir, c.Storage.File)
}

// DefaultConfig is what a missing config file resolves to.
func DefaultConfig() *LhConfig {
	cfg := &LhConfig{}
	cfg.Storage.Dir = "./data"
	cfg.Storage.File = "employee.lh"
	cfg.Index.SplitThreshold = linearhash.DefaultSplitThreshold
	return cfg
}

func LoadConfig(path string) (*LhConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
