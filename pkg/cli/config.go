package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// UserConfig represents ~/.posgate/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile" json:"current-profile"`
	Profiles       map[string]Profile `yaml:"profiles" json:"profiles"`
}

// Profile represents a single named configuration profile.
type Profile struct {
	Host   string `yaml:"host,omitempty" json:"host,omitempty"`
	APIKey string `yaml:"api-key,omitempty" json:"api-key,omitempty"`
	Token  string `yaml:"token,omitempty" json:"token,omitempty"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// ActiveProfile returns the profile selected by the override, or the
// current-profile when no override is given. An explicit override that
// names a missing profile is an error; a missing current profile just
// means defaults apply.
func (c *UserConfig) ActiveProfile(override string) (Profile, error) {
	if override != "" {
		p, ok := c.Profiles[override]
		if !ok {
			return Profile{}, fmt.Errorf("profile %q not found", override)
		}
		return p, nil
	}
	return c.Profiles[c.CurrentProfile], nil
}

// Redacted returns a copy with API keys and tokens masked for display.
func (c *UserConfig) Redacted() *UserConfig {
	out := &UserConfig{
		CurrentProfile: c.CurrentProfile,
		Profiles:       make(map[string]Profile, len(c.Profiles)),
	}
	for name, p := range c.Profiles {
		p.APIKey = redactSecret(p.APIKey)
		p.Token = redactSecret(p.Token)
		out.Profiles[name] = p
	}
	return out
}

// redactSecret keeps just enough of a credential to recognize it.
func redactSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 10 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// ConfigDir returns the path to ~/.posgate/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".posgate")
}

// ConfigPath returns the path to ~/.posgate/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads ~/.posgate/config.yaml. A missing file is not an
// error: first-run users get an empty config with the default profile
// selected. A file that exists but does not parse is surfaced.
func LoadUserConfig() (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath())
	if errors.Is(err, os.ErrNotExist) {
		return &UserConfig{
			CurrentProfile: "default",
			Profiles:       map[string]Profile{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.CurrentProfile == "" {
		cfg.CurrentProfile = "default"
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// SaveUserConfig writes ~/.posgate/config.yaml. Tokens and keys end up
// in this file, so it is created owner-only.
func SaveUserConfig(cfg *UserConfig) error {
	if err := os.MkdirAll(ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}

// normalizeHostURL validates a --host value and returns it in canonical
// scheme://authority form with no trailing slash.
func normalizeHostURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("invalid host %q: empty", raw)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", raw, err)
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return "", fmt.Errorf("invalid host %q: scheme must be http or https", raw)
	case u.Host == "":
		return "", fmt.Errorf("invalid host %q: missing host", raw)
	case u.Path != "" && u.Path != "/":
		return "", fmt.Errorf("invalid host %q: must not include a path", raw)
	case u.RawQuery != "" || u.Fragment != "":
		return "", fmt.Errorf("invalid host %q: must not include query or fragment", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
