package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hiveshield/hiveshield/internal/model"
	"github.com/hiveshield/hiveshield/internal/pii"
)

const sampleYAML = `
pii:
  types: [email, ssn]
  cloak_format: hash
  extra_patterns:
    - label: employee_id
      regex: 'EMP-\d{6}'
      confidence: 0.9
secret_scan:
  enabled: true
  extra_patterns:
    - label: acme_token
      regex: 'acme_[a-z0-9]{20}'
      risk: critical
vulnerability_check:
  enabled: true
destinations:
  openai:
    trust: untrusted
    max_classification: internal
    require_pii_cloaking: true
    blocked_patterns:
      - '(?i)project\s+chimera'
    blocked_literals:
      - 'internal-only'
  ollama-local:
    trust: local
    max_classification: restricted
`

func TestParseAndConvert(t *testing.T) {
	f, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := f.Shield()
	if err != nil {
		t.Fatalf("Shield: %v", err)
	}

	if cfg.PII.Format != pii.FormatHash {
		t.Errorf("cloak format = %s, want hash", cfg.PII.Format)
	}
	if len(cfg.PII.TypesToDetect) != 2 || cfg.PII.TypesToDetect[0] != model.PIIEmail {
		t.Errorf("types = %v", cfg.PII.TypesToDetect)
	}
	if len(cfg.PII.ExtraPatterns) != 1 || cfg.PII.ExtraPatterns[0].Label != "employee_id" {
		t.Errorf("pii extra patterns = %+v", cfg.PII.ExtraPatterns)
	}
	if !cfg.EnableSecretScan || !cfg.EnableVulnerabilityCheck {
		t.Error("both scans should be enabled")
	}
	if len(cfg.SecretPatterns) != 1 || cfg.SecretPatterns[0].Risk != model.RiskCritical {
		t.Errorf("secret patterns = %+v", cfg.SecretPatterns)
	}

	p, ok := cfg.AccessPolicies["openai"]
	if !ok {
		t.Fatal("openai policy missing")
	}
	if p.Trust != model.TrustUntrusted || p.MaxClassification != model.ClassInternal {
		t.Errorf("openai policy = %+v", p)
	}
	if !p.RequirePIICloaking {
		t.Error("openai should require cloaking")
	}
	// One regex plus one quoted literal.
	if len(p.BlockedPatterns) != 2 {
		t.Errorf("blocked patterns = %v", p.BlockedPatterns)
	}

	local, ok := cfg.AccessPolicies["ollama-local"]
	if !ok || local.Trust != model.TrustLocal || local.MaxClassification != model.ClassRestricted {
		t.Errorf("ollama-local policy = %+v", local)
	}
}

func TestParseDefaults(t *testing.T) {
	f, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	cfg, err := f.Shield()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.EnableSecretScan || !cfg.EnableVulnerabilityCheck {
		t.Error("absent sections must default to enabled")
	}
	if len(cfg.AccessPolicies) != 0 {
		t.Errorf("no destinations expected, got %v", cfg.AccessPolicies)
	}
}

func TestParseDisabledStages(t *testing.T) {
	f, err := Parse([]byte("secret_scan:\n  enabled: false\nvulnerability_check:\n  enabled: false\n"))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := f.Shield()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EnableSecretScan || cfg.EnableVulnerabilityCheck {
		t.Error("explicit false must disable the stage")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("destinations:\n  openai:\n    require_cloaking: true\n"))
	if err == nil {
		t.Fatal("a misspelled policy key must be an error")
	}
}

func TestShieldRejectsBadEnums(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad format", "pii:\n  cloak_format: rot13\n", "cloak_format"},
		{"bad trust", "destinations:\n  x:\n    trust: implicit\n", "trust"},
		{"bad class", "destinations:\n  x:\n    max_classification: topsecret\n", "classification"},
		{"bad risk", "secret_scan:\n  extra_patterns:\n    - label: a\n      regex: b\n      risk: dire\n", "risk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if _, err := f.Shield(); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if f == nil {
		t.Fatal("missing file must yield the zero config")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Destinations) != 2 {
		t.Errorf("destinations = %v", f.Destinations)
	}
}

func FuzzParse(f *testing.F) {
	f.Add([]byte(sampleYAML))
	f.Add([]byte(""))
	f.Add([]byte("pii: [not a map]"))

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg, err := Parse(data)
		if err != nil {
			return
		}
		// Whatever parses must convert or fail cleanly, never panic.
		_, _ = cfg.Shield()
	})
}
