package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides: STOREFRONT_BASE_URL overrides base.url.
	EnvPrefix = "STOREFRONT"

	// EnvConfigPath names an explicit configuration file, bypassing discovery.
	EnvConfigPath = "STOREFRONT_CONFIG"

	// DefaultFileName is the file Resolve looks for.
	DefaultFileName = "config.properties"
)

// readSource loads the file at path and layers environment overrides on top.
// Keys come back lower-cased and dot separated.
func readSource(path string) (map[string]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml":
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	default:
		// Values are literal; ${...} is never expanded.
		loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
		props, err := loader.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		// File values sit below environment overrides in viper's precedence.
		for _, key := range props.Keys() {
			v.SetDefault(key, props.GetString(key, ""))
		}
	}

	keys := append(v.AllKeys(), KnownKeys...)
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		key = strings.ToLower(key)
		if v.IsSet(key) {
			values[key] = strings.TrimSpace(v.GetString(key))
		}
	}
	return values, nil
}

// Resolve returns the configuration path to load: $STOREFRONT_CONFIG when set,
// otherwise the nearest config.properties found walking up from dir.
func Resolve(dir string) (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(dir, DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s above %s", ErrConfigNotFound, DefaultFileName, dir)
		}
		dir = parent
	}
}
