// Package config loads settings from the environment, an optional env file
// and an optional YAML settings file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/joho/godotenv"

	"github.com/Laisky/icebreaker/library/log"
)

// DefaultEnvFile is read when no explicit env file is given.
const DefaultEnvFile = ".env"

// LoadFromFile loads the YAML settings file into the shared config.
// An empty path is a no-op.
func LoadFromFile(cfgPath string) error {
	cfgPath = strings.TrimSpace(cfgPath)
	if cfgPath == "" {
		return nil
	}

	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		return errors.Wrapf(err, "load configuration %q", cfgPath)
	}

	log.Logger.Info("load configuration", zap.String("config", cfgPath))
	return nil
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment. Variables that are already set win over the file.
//
// A missing file is only an error when required is true, so the default
// `.env` can be absent.
func LoadEnvFile(path string, required bool) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			log.Logger.Debug("env file not found, skip", zap.String("path", path))
			return nil
		}
		return errors.Wrapf(err, "stat env file %q", path)
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "load env file %q", path)
	}

	log.Logger.Info("load env file", zap.String("path", path))
	return nil
}
