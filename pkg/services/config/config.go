package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// App is the engine-wide configuration. Every field has a default so the
// engine runs with no config file at all.
type App struct {
	DBPath           string        `mapstructure:"db_path"`
	ListenAddr       string        `mapstructure:"listen_addr"`
	AutoSaveInterval time.Duration `mapstructure:"autosave_interval"`
	StatusWindow     time.Duration `mapstructure:"status_window"`
	Profile          string        `mapstructure:"profile"`
	ProfilesPath     string        `mapstructure:"profiles_path"`
}

func LoadApp(path string) (*App, error) {
	v := viper.New()

	v.SetDefault("db_path", "quote-forge.db")
	v.SetDefault("listen_addr", "localhost:8080")
	v.SetDefault("autosave_interval", 10*time.Second)
	v.SetDefault("status_window", 3*time.Second)
	v.SetDefault("profile", "default")
	v.SetDefault("profiles_path", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}
	return &cfg, nil
}
