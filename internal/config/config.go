// Package config loads aslharness's runtime settings the way the teacher's
// internal/config loads Station's: environment variables merged over a
// viper-backed config file, with getEnvOrDefault-style helpers filling in
// defaults for anything neither source sets.
package config

import (
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds the handful of knobs the interpreter and CLI need: where
// mock data files resolve from, and the step-limit ceilings of spec §5.
type Config struct {
	BasePath          string
	TopLevelStepLimit int
	SubStepLimit      int
	Debug             bool
}

// InitViper wires viper to read an optional config file (explicit path, or
// "aslharness.yaml" discovered in the current directory), following the
// teacher's InitViper convention.
func InitViper(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("aslharness")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	viper.AutomaticEnv()
	bindEnvVars()
	return nil
}

func bindEnvVars() {
	viper.BindEnv("base_path", "ASLHARNESS_BASE_PATH")
	viper.BindEnv("top_level_step_limit", "ASLHARNESS_TOP_LEVEL_STEP_LIMIT")
	viper.BindEnv("sub_step_limit", "ASLHARNESS_SUB_STEP_LIMIT")
	viper.BindEnv("debug", "ASLHARNESS_DEBUG")
}

// Load assembles the effective Config: library defaults, overridden by any
// config file value, overridden in turn by an explicit environment
// variable, matching the teacher's "env vars take highest priority"
// ordering in bindEnvVars/Load.
func Load() *Config {
	bindEnvVars()

	cfg := &Config{
		BasePath:          getEnvOrDefault("ASLHARNESS_BASE_PATH", "."),
		TopLevelStepLimit: getEnvIntOrDefault("ASLHARNESS_TOP_LEVEL_STEP_LIMIT", 1000),
		SubStepLimit:      getEnvIntOrDefault("ASLHARNESS_SUB_STEP_LIMIT", 100),
		Debug:             getEnvBoolOrDefault("ASLHARNESS_DEBUG", false),
	}

	if viper.IsSet("base_path") {
		cfg.BasePath = viper.GetString("base_path")
	}
	if viper.IsSet("top_level_step_limit") {
		cfg.TopLevelStepLimit = viper.GetInt("top_level_step_limit")
	}
	if viper.IsSet("sub_step_limit") {
		cfg.SubStepLimit = viper.GetInt("sub_step_limit")
	}
	if viper.IsSet("debug") {
		cfg.Debug = viper.GetBool("debug")
	}

	return cfg
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBoolOrDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
