// Package config loads the shield's YAML configuration and converts it
// into the typed configs the pipeline components take. Parsing and
// validation happen here; the rest of the code never sees YAML.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hiveshield/hiveshield/internal/model"
	"github.com/hiveshield/hiveshield/internal/pii"
	"github.com/hiveshield/hiveshield/internal/policy"
	"github.com/hiveshield/hiveshield/internal/secrets"
	"github.com/hiveshield/hiveshield/internal/shield"
)

// File is the on-disk YAML schema.
type File struct {
	PII          PIISection                `yaml:"pii"`
	SecretScan   SecretScanSection         `yaml:"secret_scan"`
	VulnCheck    VulnCheckSection          `yaml:"vulnerability_check"`
	Destinations map[string]DestinationDef `yaml:"destinations"`

	// AuditLog is the path of the hash-chained JSONL decision log.
	// Empty disables decision logging.
	AuditLog string `yaml:"audit_log"`
}

// PIISection configures detection and cloaking.
type PIISection struct {
	// Types restricts detection to the listed PII types. Empty scans all.
	Types []string `yaml:"types"`

	// CloakFormat is one of placeholder, hash, redact. Empty means placeholder.
	CloakFormat string `yaml:"cloak_format"`

	// PreserveFormat makes redact tokens match the original length.
	PreserveFormat bool `yaml:"preserve_format"`

	ExtraPatterns []PatternDef `yaml:"extra_patterns"`
}

// SecretScanSection toggles and extends the secret scanner.
type SecretScanSection struct {
	// Enabled defaults to true when the section is absent.
	Enabled *bool `yaml:"enabled"`

	ExtraPatterns []SecretPatternDef `yaml:"extra_patterns"`
}

// VulnCheckSection toggles the vulnerability assessor.
type VulnCheckSection struct {
	Enabled *bool `yaml:"enabled"`
}

// PatternDef is an operator-defined PII pattern.
type PatternDef struct {
	Label      string  `yaml:"label"`
	Regex      string  `yaml:"regex"`
	Confidence float64 `yaml:"confidence"`
}

// SecretPatternDef is an operator-defined secret pattern.
type SecretPatternDef struct {
	Label      string  `yaml:"label"`
	Regex      string  `yaml:"regex"`
	Confidence float64 `yaml:"confidence"`
	Risk       string  `yaml:"risk"`
}

// DestinationDef is the per-destination policy record in YAML form.
type DestinationDef struct {
	Trust              string   `yaml:"trust"`
	MaxClassification  string   `yaml:"max_classification"`
	RequirePIICloaking bool     `yaml:"require_pii_cloaking"`
	AllowedDataTypes   []string `yaml:"allowed_data_types"`
	BlockedPatterns    []string `yaml:"blocked_patterns"`
	BlockedLiterals    []string `yaml:"blocked_literals"`
}

// DefaultPath returns the conventional config location,
// ~/.hiveshield/config.yaml, or "" when the home dir is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hiveshield", "config.yaml")
}

// Load reads and parses the config at path. An empty path tries the
// HIVESHIELD_CONFIG env var, then DefaultPath. A missing file is not an
// error: the zero File yields the default shield config.
func Load(path string) (*File, error) {
	if path == "" {
		path = os.Getenv("HIVESHIELD_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return &File{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML bytes into a File. Unknown fields are an error so
// a typo in a policy key cannot silently weaken the shield.
func Parse(data []byte) (*File, error) {
	var f File
	if len(bytes.TrimSpace(data)) == 0 {
		return &f, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &f, nil
}

// Shield converts the parsed file into a shield.Config, validating
// every enum string. Validation failures carry the offending key.
func (f *File) Shield() (shield.Config, error) {
	cfg := shield.DefaultConfig()

	format, err := pii.ParseCloakFormat(f.PII.CloakFormat)
	if err != nil {
		return cfg, fmt.Errorf("pii.cloak_format: %w", err)
	}
	cfg.PII = pii.Config{
		Format:         format,
		PreserveFormat: f.PII.PreserveFormat,
	}
	for _, t := range f.PII.Types {
		cfg.PII.TypesToDetect = append(cfg.PII.TypesToDetect, model.PIIType(t))
	}
	for _, p := range f.PII.ExtraPatterns {
		cfg.PII.ExtraPatterns = append(cfg.PII.ExtraPatterns, pii.ExtraPattern{
			Label:      p.Label,
			Regex:      p.Regex,
			Confidence: p.Confidence,
		})
	}

	if f.SecretScan.Enabled != nil {
		cfg.EnableSecretScan = *f.SecretScan.Enabled
	}
	for _, p := range f.SecretScan.ExtraPatterns {
		risk := model.RiskMedium
		if p.Risk != "" {
			risk, err = model.ParseRiskLevel(p.Risk)
			if err != nil {
				return cfg, fmt.Errorf("secret_scan.extra_patterns[%s].risk: %w", p.Label, err)
			}
		}
		cfg.SecretPatterns = append(cfg.SecretPatterns, secrets.ExtraPattern{
			Label:      p.Label,
			Regex:      p.Regex,
			Confidence: p.Confidence,
			Risk:       risk,
		})
	}

	if f.VulnCheck.Enabled != nil {
		cfg.EnableVulnerabilityCheck = *f.VulnCheck.Enabled
	}

	if len(f.Destinations) > 0 {
		cfg.AccessPolicies = make(map[string]policy.AccessPolicy, len(f.Destinations))
	}
	for dest, def := range f.Destinations {
		p, err := def.policy()
		if err != nil {
			return cfg, fmt.Errorf("destinations.%s: %w", dest, err)
		}
		cfg.AccessPolicies[dest] = p
	}

	return cfg, nil
}

func (d DestinationDef) policy() (policy.AccessPolicy, error) {
	trust := model.TrustUntrusted
	if d.Trust != "" {
		var err error
		trust, err = model.ParseTrust(d.Trust)
		if err != nil {
			return policy.AccessPolicy{}, err
		}
	}

	class := model.ClassPublic
	if d.MaxClassification != "" {
		var err error
		class, err = model.ParseClassification(d.MaxClassification)
		if err != nil {
			return policy.AccessPolicy{}, err
		}
	}

	blocked := append([]string(nil), d.BlockedPatterns...)
	for _, lit := range d.BlockedLiterals {
		blocked = append(blocked, policy.BlockLiteral(lit))
	}

	return policy.AccessPolicy{
		Trust:              trust,
		MaxClassification:  class,
		RequirePIICloaking: d.RequirePIICloaking,
		AllowedDataTypes:   append([]string(nil), d.AllowedDataTypes...),
		BlockedPatterns:    blocked,
	}, nil
}
