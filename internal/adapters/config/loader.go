// Package config provides the project configuration loader for hale.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"go.trai.ch/hale/internal/core/domain"
	"go.trai.ch/hale/internal/core/ports"
	"go.trai.ch/zerr"
)

// ConfigFileName is the optional project-level configuration file.
const ConfigFileName = ".hale.yaml"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file in the project root.
type Loader struct {
	log ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{log: log}
}

// Load reads the configuration for the project at root. A missing file yields
// the defaults; a present but invalid file is an error, never a silent
// fallback.
func (l *Loader) Load(root string) (domain.Config, error) {
	cfg, err := Load(filepath.Join(root, ConfigFileName))
	if err != nil {
		return domain.Config{}, err
	}

	for id, override := range cfg.Checks {
		if override.Disabled {
			l.log.Info("check disabled by configuration: " + id)
		}
	}
	return cfg, nil
}

// haleFile represents the structure of the .hale.yaml configuration file.
type haleFile struct {
	Resolver *resolverDTO        `yaml:"resolver"`
	Repair   *repairDTO          `yaml:"repair"`
	Registry *registryDTO        `yaml:"registry"`
	Doctor   *doctorDTO          `yaml:"doctor"`
	Policies *policiesDTO        `yaml:"policies"`
	Checks   map[string]checkDTO `yaml:"checks"`
}

type resolverDTO struct {
	Preference    string `yaml:"preference"`
	MaxIterations int    `yaml:"max_iterations"`
}

type repairDTO struct {
	Policy string `yaml:"policy"`
}

type registryDTO struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type doctorDTO struct {
	CheckTimeoutSeconds int `yaml:"check_timeout_seconds"`
	Parallelism         int `yaml:"parallelism"`
}

type policiesDTO struct {
	EnforceCorepack        bool     `yaml:"enforce_corepack"`
	AllowedPackageManagers []string `yaml:"allowed_package_managers"`
	MinNodeVersion         string   `yaml:"min_node_version"`
	MaxNodeVersion         string   `yaml:"max_node_version"`
}

type checkDTO struct {
	Disabled bool   `yaml:"disabled"`
	Severity string `yaml:"severity"`
}

// Load reads a configuration file from the given path, layering it over the
// defaults.
func Load(path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the project root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return domain.Config{}, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	var file haleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.Config{}, zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path)
	}

	if err := apply(&cfg, file); err != nil {
		return domain.Config{}, zerr.With(err, "path", path)
	}
	return cfg, nil
}

func apply(cfg *domain.Config, file haleFile) error {
	if file.Resolver != nil {
		pref, ok := domain.ParseResolverPreference(file.Resolver.Preference)
		if !ok {
			return zerr.With(zerr.New("unknown resolver preference"), "preference", file.Resolver.Preference)
		}
		cfg.Resolver.Preference = pref
		if file.Resolver.MaxIterations > 0 {
			cfg.Resolver.MaxIterations = file.Resolver.MaxIterations
		}
	}

	if file.Repair != nil {
		policy, ok := domain.ParseFailurePolicy(file.Repair.Policy)
		if !ok {
			return zerr.With(zerr.New("unknown repair policy"), "policy", file.Repair.Policy)
		}
		cfg.Repair.Policy = policy
	}

	if file.Registry != nil {
		if file.Registry.URL != "" {
			cfg.Registry.BaseURL = file.Registry.URL
		}
		if file.Registry.TimeoutSeconds > 0 {
			cfg.Registry.Timeout = time.Duration(file.Registry.TimeoutSeconds) * time.Second
		}
	}

	if file.Doctor != nil {
		if file.Doctor.CheckTimeoutSeconds > 0 {
			cfg.Doctor.CheckTimeout = time.Duration(file.Doctor.CheckTimeoutSeconds) * time.Second
		}
		if file.Doctor.Parallelism > 0 {
			cfg.Doctor.Parallelism = file.Doctor.Parallelism
		}
	}

	if file.Policies != nil {
		cfg.Policies = domain.PolicyConfig{
			EnforceCorepack:        file.Policies.EnforceCorepack,
			AllowedPackageManagers: file.Policies.AllowedPackageManagers,
			MinNodeVersion:         file.Policies.MinNodeVersion,
			MaxNodeVersion:         file.Policies.MaxNodeVersion,
		}
	}

	for id, dto := range file.Checks {
		override := domain.CheckOverride{Disabled: dto.Disabled}
		if dto.Severity != "" {
			severity, ok := domain.ParseSeverity(dto.Severity)
			if !ok {
				return zerr.With(zerr.With(zerr.New("unknown check severity"), "check", id), "severity", dto.Severity)
			}
			override.Severity = &severity
		}
		cfg.Checks[id] = override
	}

	return nil
}
