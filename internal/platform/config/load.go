package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultConfigDir  = "configs"
	DefaultDotEnvPath = ".env"
	EnvPrefix         = "APP_"
)

// Options says where Load looks. An empty Dir or DotEnv skips that layer.
type Options struct {
	Profile string
	Dir     string
	DotEnv  string
}

// Load reads configs/base.yaml, configs/{profile}.yaml, .env and the APP_
// environment over the built-in defaults.
func Load(profile string) (*Config, error) {
	return LoadWith(Options{Profile: profile, Dir: DefaultConfigDir, DotEnv: DefaultDotEnvPath})
}

// LoadWith layers, lowest first: defaults, {Dir}/base.yaml,
// {Dir}/{Profile}.yaml, then APP_ variables. DotEnv is read into the
// process environment first and never overrides a variable already set.
// Missing files are skipped; files that fail to parse are errors.
func LoadWith(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	for _, name := range opts.files() {
		if err := loadYAML(k, name); err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
	}

	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, fmt.Errorf("loading %s: %w", opts.DotEnv, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := new(Config)
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func (o Options) files() []string {
	if o.Dir == "" {
		return nil
	}

	files := []string{filepath.Join(o.Dir, "base.yaml")}
	if o.Profile != "" {
		files = append(files, filepath.Join(o.Dir, o.Profile+".yaml"))
	}

	return files
}

// nestedSections are the groups whose keys sit a level below their section.
var nestedSections = map[string][]string{
	"log":      {"file"},
	"client":   {"retry", "circuit_breaker", "transport"},
	"services": {"characters"},
}

// envKey maps APP_CLIENT_RETRY_MAX_ATTEMPTS to client.retry.max_attempts.
// Key names keep their underscores; only section boundaries become dots.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))

	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}

	for _, group := range nestedSections[section] {
		if leaf, found := strings.CutPrefix(rest, group+"_"); found {
			return section + "." + group + "." + leaf
		}
		if rest == group {
			return section + "." + group
		}
	}

	return section + "." + rest
}

func loadYAML(k *koanf.Koanf, path string) error {
	if !exists(path) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

func loadDotEnv(path string) error {
	if path == "" || !exists(path) {
		return nil
	}

	return godotenv.Load(path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
