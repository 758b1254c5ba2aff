// Package config loads pacwrap's global configuration
// (<config>/pacwrap.yml) and per-container configuration
// (<config>/container/<key>.yml), and binds both to the outer CLI
// layer via viper/cobra/pflag the way the teacher's config package
// does.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pacwrap/pacwrap/container"
)

type configKey struct{}

// Global is pacwrap.yml's schema: settings that apply across every
// container, not the per-container Instance documents container.go
// models.
type Global struct {
	Verbose         bool     `mapstructure:"verbose" yaml:"verbose"`
	SummaryPreview  bool     `mapstructure:"summary_preview" yaml:"summary_preview"`
	KeyringPackages []string `mapstructure:"keyring_packages" yaml:"keyring_packages"`
}

// DefaultGlobal returns pacwrap's canonical default configuration.
// KeyringPackages defaults to a single entry rather than hardcoding
// the keyring-sync check against "archlinux-keyring" (SPEC_FULL.md §3,
// resolving spec.md §9 Open Question 2).
func DefaultGlobal() Global {
	return Global{
		Verbose:         false,
		SummaryPreview:  true,
		KeyringPackages: []string{"archlinux-keyring"},
	}
}

var (
	setupOnce sync.Once
	setupErr  error
)

var ErrConfigAlreadyExists = errors.New("pacwrap config already exists")

// Load reads pacwrap.yml (if present), binds fs's flags over it, and
// returns the merged Global configuration.
func Load(fs *pflag.FlagSet) (Global, error) {
	if err := ensureViperConfigured(); err != nil {
		return Global{}, err
	}

	bindFlags(fs)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Global{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Global
	if err := viper.Unmarshal(&cfg); err != nil {
		return Global{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Create writes pacwrap.yml with default values and returns its path.
func Create() (string, error) {
	if _, err := createConfigDir(); err != nil {
		return "", err
	}

	cfgFile, err := ConfigFilePath()
	if err != nil {
		return "", err
	}

	writer := viper.New()
	writer.SetConfigType(pacwrapConfigType)

	defaults := DefaultGlobal()
	if err := writer.MergeConfigMap(configAsMap(defaults)); err != nil {
		return "", fmt.Errorf("failed to prepare default config: %w", err)
	}

	if err := writer.WriteConfigAs(cfgFile); err != nil {
		var alreadyExistsErr viper.ConfigFileAlreadyExistsError
		if errors.As(err, &alreadyExistsErr) {
			return cfgFile, ErrConfigAlreadyExists
		}
		return "", fmt.Errorf("error writing config file: %w", err)
	}
	return cfgFile, nil
}

// Inject stores cfg in ctx.
func (g Global) Inject(ctx context.Context) context.Context {
	return context.WithValue(ctx, configKey{}, g)
}

// FromContext extracts a Global previously Inject-ed into ctx.
func FromContext(ctx context.Context) (Global, error) {
	g, ok := ctx.Value(configKey{}).(Global)
	if !ok {
		return Global{}, fmt.Errorf("config not found in context")
	}
	return g, nil
}

func ensureViperConfigured() error {
	setupOnce.Do(func() {
		dir, err := ConfigDir()
		if err != nil {
			setupErr = err
			return
		}

		v := viper.GetViper()
		v.SetConfigName(pacwrapConfigName)
		v.SetConfigType(pacwrapConfigType)
		v.AddConfigPath(dir)

		v.SetEnvPrefix("PACWRAP")
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()

		for key, value := range configAsMap(DefaultGlobal()) {
			v.SetDefault(key, value)
		}
	})
	return setupErr
}

func bindFlags(fs *pflag.FlagSet) {
	if fs == nil {
		return
	}
	bind := func(key, flag string) {
		if f := fs.Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
	bind("verbose", "verbose")
	bind("summary_preview", "preview")
}

func configAsMap(cfg Global) map[string]any {
	return map[string]any{
		"verbose":          cfg.Verbose,
		"summary_preview":  cfg.SummaryPreview,
		"keyring_packages": cfg.KeyringPackages,
	}
}

// LoadContainer reads and validates a container's YAML config at path.
func LoadContainer(path string) (container.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return container.Instance{}, fmt.Errorf("failed to read container config %s: %w", path, err)
	}

	var inst container.Instance
	if err := yaml.Unmarshal(data, &inst); err != nil {
		return container.Instance{}, fmt.Errorf("failed to parse container config %s: %w", path, err)
	}
	if err := inst.Validate(); err != nil {
		return container.Instance{}, fmt.Errorf("invalid container config %s: %w", path, err)
	}
	return inst, nil
}

// SaveContainer persists inst's YAML document to path, creating parent
// directories as needed.
func SaveContainer(path string, inst container.Instance) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create container config directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to marshal container config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write container config %s: %w", path, err)
	}
	return nil
}
