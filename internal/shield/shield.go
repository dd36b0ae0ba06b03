// Package shield orchestrates the inspection pipeline: secret scan,
// vulnerability assessment, PII detection, and policy evaluation, in a
// fixed order with one decision per message. A HiveShield is built once
// from a frozen config and shared across callers; its only mutable
// state is a set of atomic counters.
package shield

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hiveshield/hiveshield/internal/model"
	"github.com/hiveshield/hiveshield/internal/pii"
	"github.com/hiveshield/hiveshield/internal/policy"
	"github.com/hiveshield/hiveshield/internal/secrets"
	"github.com/hiveshield/hiveshield/internal/vuln"
)

// Config freezes the shield's behavior at construction.
type Config struct {
	// PII configures the detector: allowlist, cloak format, custom patterns.
	PII pii.Config

	// EnableSecretScan toggles stage 1 of the outgoing pipeline.
	// Disabled stages are skipped, never errored.
	EnableSecretScan bool

	// EnableVulnerabilityCheck toggles stage 2.
	EnableVulnerabilityCheck bool

	// SecretPatterns adds operator-defined secret patterns.
	SecretPatterns []secrets.ExtraPattern

	// AccessPolicies maps destination identifiers to their policies.
	// Destinations absent from the map are denied (fail-closed).
	AccessPolicies map[string]policy.AccessPolicy
}

// DefaultConfig returns a config with both scans enabled and no policies.
func DefaultConfig() Config {
	return Config{
		EnableSecretScan:         true,
		EnableVulnerabilityCheck: true,
	}
}

// HiveShield runs the detection-and-decision pipeline. Construct once
// with New and share; all methods are safe for concurrent use.
type HiveShield struct {
	cfg      Config
	detector *pii.Detector
	scanner  *secrets.Scanner
	assessor *vuln.Assessor
	engine   *policy.Engine

	piiDetections  atomic.Uint64
	secretsBlocked atomic.Uint64
	threatsCaught  atomic.Uint64
}

// New builds a shield from cfg. Configuration errors (bad custom
// regexes, bad blocked patterns) surface here and nowhere later.
func New(cfg Config) (*HiveShield, error) {
	detector, err := pii.NewDetector(cfg.PII)
	if err != nil {
		return nil, fmt.Errorf("shield: pii detector: %w", err)
	}

	scanner, err := secrets.NewScanner(cfg.SecretPatterns...)
	if err != nil {
		return nil, fmt.Errorf("shield: secret scanner: %w", err)
	}

	engine := policy.NewEngine()
	for dest, p := range cfg.AccessPolicies {
		if err := engine.AddPolicy(dest, p); err != nil {
			return nil, fmt.Errorf("shield: %w", err)
		}
	}

	return &HiveShield{
		cfg:      cfg,
		detector: detector,
		scanner:  scanner,
		assessor: vuln.NewAssessor(),
		engine:   engine,
	}, nil
}

// ProcessOutgoing inspects text bound for destination. Stages run in
// strict order and short-circuit on the first terminal outcome:
//
//  1. Secret scan — any match blocks; secrets are never forwarded.
//  2. Vulnerability assessment — unsafe prompts block.
//  3. PII detection — collected, not terminal.
//  4. Policy check — denial blocks (fail-closed for unknown destinations).
//  5. Resolution — cloak, warn, or allow.
func (h *HiveShield) ProcessOutgoing(text, destination string) Result {
	start := time.Now()
	var result Result

	if h.cfg.EnableSecretScan {
		if found := h.scanner.ScanText(text); len(found) > 0 {
			h.secretsBlocked.Add(1)
			result.Secrets = found
			result.Action = block(fmt.Sprintf("secrets detected: %d match(es), risk %s",
				len(found), h.scanner.RiskLevel(found)))
			result.Elapsed = time.Since(start)
			return result
		}
	}

	if h.cfg.EnableVulnerabilityCheck {
		assessment := h.assessor.AssessPrompt(text)
		result.Assessment = &assessment
		if !assessment.SafeToSend {
			h.threatsCaught.Add(1)
			result.Action = block(fmt.Sprintf("threat level %s detected: %s",
				assessment.ThreatLevel, strings.Join(assessment.Indicators, "; ")))
			result.Elapsed = time.Since(start)
			return result
		}
	}

	piiFound := h.detector.Detect(text)
	result.PII = piiFound
	if len(piiFound) > 0 {
		h.piiDetections.Add(uint64(len(piiFound)))
	}

	decision := h.engine.CheckAccess(destination, model.ClassInternal, len(piiFound) > 0, text)
	if !decision.Allowed {
		result.Action = block(decision.Reason)
		result.Elapsed = time.Since(start)
		return result
	}

	switch {
	case requiresCloaking(decision) && len(piiFound) > 0:
		result.Action = cloakAndAllow(h.detector.Cloak(text))
	case len(piiFound) > 0:
		result.Action = warn("PII detected but not cloaked")
	default:
		result.Action = allow()
	}

	result.Elapsed = time.Since(start)
	return result
}

// ProcessIncoming inspects a provider response. Nothing is terminal —
// the text is not going anywhere further — so all enabled detectors run
// and any finding folds into a single Warn naming the categories.
func (h *HiveShield) ProcessIncoming(text string) Result {
	start := time.Now()
	var result Result
	var categories []string

	if h.cfg.EnableSecretScan {
		if found := h.scanner.ScanText(text); len(found) > 0 {
			h.secretsBlocked.Add(1)
			result.Secrets = found
			categories = append(categories, "secrets")
		}
	}

	if h.cfg.EnableVulnerabilityCheck {
		assessment := h.assessor.AssessResponse(text)
		result.Assessment = &assessment
		if !assessment.SafeToSend {
			h.threatsCaught.Add(1)
			categories = append(categories, "threat indicators")
		}
	}

	if found := h.detector.Detect(text); len(found) > 0 {
		h.piiDetections.Add(uint64(len(found)))
		result.PII = found
		categories = append(categories, "PII")
	}

	if len(categories) > 0 {
		sort.Strings(categories)
		result.Action = warn("response contains: " + strings.Join(categories, ", "))
	} else {
		result.Action = allow()
	}

	result.Elapsed = time.Since(start)
	return result
}

// UncloakResponse restores original PII in a provider response using
// the cloak map from the matching outgoing message. Purely textual;
// needs no shield state.
func UncloakResponse(text string, cloaked *pii.CloakedText) string {
	if cloaked == nil {
		return text
	}
	return pii.Uncloak(text, cloaked.Map)
}

// PIIDetectionCount reports the total PII matches seen since construction.
func (h *HiveShield) PIIDetectionCount() uint64 { return h.piiDetections.Load() }

// SecretsBlockedCount reports messages stopped or flagged for secrets.
func (h *HiveShield) SecretsBlockedCount() uint64 { return h.secretsBlocked.Load() }

// ThreatsCaughtCount reports messages stopped or flagged as threats.
func (h *HiveShield) ThreatsCaughtCount() uint64 { return h.threatsCaught.Load() }

func requiresCloaking(d policy.Decision) bool {
	for _, a := range d.RequiredActions {
		if a == policy.ActionCloakPII {
			return true
		}
	}
	return false
}
