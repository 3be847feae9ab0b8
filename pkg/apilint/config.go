package apilint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries per-rule severity overrides, usually loaded from an
// .apilint.yaml next to the contract.
type Config struct {
	Rules map[string]string `yaml:"rules"` // ruleID → "off"/"error"/"warning"/"info"
}

// overrideValues is the set of strings an override may take.
var overrideValues = map[string]bool{
	"off":                   true,
	string(SeverityError):   true,
	string(SeverityWarning): true,
	string(SeverityInfo):    true,
}

// LoadConfig reads an .apilint.yaml configuration file and rejects
// overrides outside off/error/warning/info.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the caller (CLI flag or test)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	for id, sev := range cfg.Rules {
		if !overrideValues[sev] {
			return nil, fmt.Errorf("config %s: rule %s has unknown severity %q", path, id, sev)
		}
	}
	return &cfg, nil
}

// severityFor resolves the severity a rule runs at under this config. A nil
// receiver means no overrides. The empty severity marks a rule turned off.
func (c *Config) severityFor(r Rule) Severity {
	if c != nil {
		if override, ok := c.Rules[r.ID()]; ok {
			if override == "off" {
				return ""
			}
			return Severity(override)
		}
	}
	return r.DefaultSeverity()
}
