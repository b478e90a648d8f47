package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProviderProfile represents a provider-specific configuration profile.
// Endpoint is optional; adapters without one serve their deterministic
// baseline payload.
type ProviderProfile struct {
	Name      string          `yaml:"name" json:"name"`
	Endpoint  string          `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	APIKey    string          `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	TTLHours  int             `yaml:"ttl_hours,omitempty" json:"ttl_hours,omitempty"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Scopes    []string        `yaml:"scopes,omitempty" json:"scopes,omitempty"` // "brand", "product"
}

// RateLimitConfig caps outbound request rates per provider.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// LoadProviderProfile loads a provider profile YAML by provider name.
// It searches the profiles directory for provider_<name>.yaml.
func LoadProviderProfile(profilesDir, name string) (*ProviderProfile, error) {
	name = strings.ToLower(name)
	path := filepath.Join(profilesDir, fmt.Sprintf("provider_%s.yaml", name))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load provider profile %q: %w", name, err)
	}

	var profile ProviderProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse provider profile %q: %w", name, err)
	}

	if profile.Name == "" {
		profile.Name = name
	}

	return &profile, nil
}

// LoadAllProviderProfiles loads all provider_*.yaml files from the profiles
// directory, keyed by provider name.
func LoadAllProviderProfiles(profilesDir string) (map[string]*ProviderProfile, error) {
	matches, err := filepath.Glob(filepath.Join(profilesDir, "provider_*.yaml"))
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*ProviderProfile, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var profile ProviderProfile
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		if profile.Name == "" {
			// Extract name from filename: provider_trustpilot.yaml -> trustpilot
			base := filepath.Base(path)
			profile.Name = strings.TrimSuffix(strings.TrimPrefix(base, "provider_"), ".yaml")
		}

		profiles[profile.Name] = &profile
	}

	return profiles, nil
}

// SupportsScope reports whether the profile enables a fetch scope.
// An empty scope list means both scopes are enabled.
func (p *ProviderProfile) SupportsScope(scope string) bool {
	if len(p.Scopes) == 0 {
		return true
	}
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
