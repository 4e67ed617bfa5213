// Package config loads the YAML connection profile consumed by the CLI
// and by the discovery-scanner collaborator. It never stores secrets
// or device state — only the host/port/timeout/retry settings needed
// to construct a client.Config.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is a YAML-serializable connection profile.
type Profile struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	RetryCount  int           `yaml:"retry_count"`
}

const (
	defaultPort        = 5683
	defaultDialTimeout = 5 * time.Second
	defaultRetryCount  = 5
)

// setDefaults fills in zero-valued fields with the protocol's fixed
// defaults (spec.md §6 Constants).
func (p *Profile) setDefaults() {
	if p.Port == 0 {
		p.Port = defaultPort
	}
	if p.DialTimeout == 0 {
		p.DialTimeout = defaultDialTimeout
	}
	if p.RetryCount == 0 {
		p.RetryCount = defaultRetryCount
	}
}

func (p *Profile) validate() error {
	if p.Host == "" {
		return fmt.Errorf("host is required")
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("invalid port: %d", p.Port)
	}
	return nil
}

// Load reads a Profile from a YAML file at path, applying defaults and
// validating the result.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	profile.setDefaults()
	if err := profile.validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	return &profile, nil
}

// Write serializes profile to path as YAML, in the form Load reads.
func Write(profile *Profile, path string) error {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
