// Package policy stores per-destination access-control policies and
// evaluates outgoing messages against them. Evaluation is fail-closed:
// a destination without a registered policy is denied.
package policy

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/hiveshield/hiveshield/internal/model"
)

// ActionCloakPII is the remediation appended when an allowed message
// carries PII to a destination that requires cloaking.
const ActionCloakPII = "cloak_pii"

// AccessPolicy is the per-destination record. Policies are registered
// at configuration time and treated as immutable; changing one means
// calling AddPolicy again with a replacement.
type AccessPolicy struct {
	Trust              model.ProviderTrust
	MaxClassification  model.DataClassification
	RequirePIICloaking bool
	AllowedDataTypes   []string
	BlockedPatterns    []string
}

// Decision is the outcome of one access check.
type Decision struct {
	Allowed         bool     `json:"allowed"`
	Reason          string   `json:"reason"`
	RequiredActions []string `json:"required_actions,omitempty"`
}

// compiledPolicy pairs a policy with its pre-compiled blocked patterns.
type compiledPolicy struct {
	AccessPolicy
	blocked []*regexp.Regexp
}

// Engine evaluates destinations against registered policies.
// Safe for concurrent use; AddPolicy is the explicit update path.
type Engine struct {
	mu       sync.RWMutex
	policies map[string]compiledPolicy
}

// NewEngine returns an engine with no registered policies.
// Every destination is denied until a policy is added.
func NewEngine() *Engine {
	return &Engine{policies: make(map[string]compiledPolicy)}
}

// AddPolicy registers (or replaces) the policy for a destination.
// Blocked patterns compile as regexes; a pattern that fails to compile
// is a configuration error and fails fast.
func (e *Engine) AddPolicy(destination string, p AccessPolicy) error {
	if destination == "" {
		return fmt.Errorf("policy destination is required")
	}

	var blocked []*regexp.Regexp
	for _, pat := range p.BlockedPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("policy %q: blocked pattern %q: %w", destination, pat, err)
		}
		blocked = append(blocked, re)
	}

	e.mu.Lock()
	e.policies[destination] = compiledPolicy{AccessPolicy: p, blocked: blocked}
	e.mu.Unlock()
	return nil
}

// Policy returns the registered policy for a destination, if any.
func (e *Engine) Policy(destination string) (AccessPolicy, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp, ok := e.policies[destination]
	return cp.AccessPolicy, ok
}

// Destinations returns the registered destination identifiers.
func (e *Engine) Destinations() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.policies))
	for d := range e.policies {
		out = append(out, d)
	}
	return out
}

// CheckAccess evaluates a message bound for destination.
//
// Order (must not change):
//  1. No registered policy — deny (fail-closed).
//  2. Classification above the policy ceiling — deny.
//  3. Blocked pattern matches the content — deny.
//  4. Allow; append "cloak_pii" when the message carries PII and the
//     policy requires cloaking. The explicit RequirePIICloaking flag
//     wins regardless of trust level.
func (e *Engine) CheckAccess(destination string, classification model.DataClassification, containsPII bool, content string) Decision {
	e.mu.RLock()
	cp, ok := e.policies[destination]
	e.mu.RUnlock()

	if !ok {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("no policy registered for destination %q: denied by default", destination),
		}
	}

	if classification > cp.MaxClassification {
		return Decision{
			Allowed: false,
			Reason: fmt.Sprintf("classification %s exceeds ceiling %s for destination %q",
				classification, cp.MaxClassification, destination),
		}
	}

	for _, re := range cp.blocked {
		if re.MatchString(content) {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("content matches blocked pattern %q", re.String()),
			}
		}
	}

	d := Decision{Allowed: true, Reason: "access granted"}
	if containsPII && cp.RequirePIICloaking {
		d.RequiredActions = append(d.RequiredActions, ActionCloakPII)
		d.Reason = "access granted; PII must be cloaked"
	}
	return d
}

// BlockLiteral converts a literal string into a blocked pattern that
// matches it exactly. Convenience for config files that mix literals
// and regexes.
func BlockLiteral(s string) string {
	return regexp.QuoteMeta(strings.TrimSpace(s))
}
