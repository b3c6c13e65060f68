package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the merged configuration of defaults, statfile.yaml,
// STATFILE_* environment variables and command flags.
type Config struct {
	Ext         string `mapstructure:"ext"`
	To          string `mapstructure:"to"`
	AutoLabels  bool   `mapstructure:"auto_labels"`
	UpdateWidth bool   `mapstructure:"update_width"`
	LogLevel    string `mapstructure:"log_level"`
	NoColor     bool   `mapstructure:"no_color"`
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"ext":          "ext",
	"to":           "to",
	"auto_labels":  "auto-labels",
	"update_width": "update-width",
	"log_level":    "log-level",
	"no_color":     "no-color",
}

func loadConfig(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("ext", "dta")
	v.SetDefault("to", "")
	v.SetDefault("auto_labels", true)
	v.SetDefault("update_width", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("no_color", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("statfile")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "statfile"))
		}
	}

	v.SetEnvPrefix("STATFILE")
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Ext = strings.ToLower(cfg.Ext)
	cfg.To = strings.ToLower(cfg.To)

	return &cfg, nil
}

// newLogger returns a development logger when verbose, and a production
// logger at the configured level otherwise.
func newLogger(verbose bool, level string) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}

	return zc.Build()
}
