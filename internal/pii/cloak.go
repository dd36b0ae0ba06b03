package pii

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/hiveshield/hiveshield/internal/model"
)

// CloakFormat selects the replacement token style.
type CloakFormat int

const (
	// FormatPlaceholder emits "[TYPE_n]" with a 1-based per-type counter.
	FormatPlaceholder CloakFormat = iota

	// FormatHash emits "[TYPE_xxxxxxxx]" with a short digest of the
	// original value. Deterministic for equal inputs, not reversible
	// without the cloak map.
	FormatHash

	// FormatRedact emits "****", or an asterisk run matching the
	// original length when PreserveFormat is set.
	FormatRedact
)

func (f CloakFormat) String() string {
	switch f {
	case FormatPlaceholder:
		return "placeholder"
	case FormatHash:
		return "hash"
	case FormatRedact:
		return "redact"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// ParseCloakFormat converts a config string to a CloakFormat.
func ParseCloakFormat(s string) (CloakFormat, error) {
	switch s {
	case "placeholder", "":
		return FormatPlaceholder, nil
	case "hash":
		return FormatHash, nil
	case "redact":
		return FormatRedact, nil
	default:
		return FormatPlaceholder, fmt.Errorf("unknown cloak format %q", s)
	}
}

// CloakedText is the result of cloaking: the transformed text, the
// matches with their assigned replacements, and the token→original map
// used to restore the text later. Map keys are unique.
type CloakedText struct {
	Text    string            `json:"text"`
	Matches []Match           `json:"matches"`
	Map     map[string]string `json:"cloak_map"`
}

// Cloak detects personal data in text and replaces every surviving match
// with a token per the configured format. Tokens are assigned in
// left-to-right scan order; substitution runs right-to-left so earlier
// byte offsets stay valid.
func (d *Detector) Cloak(text string) CloakedText {
	matches := d.Detect(text)
	cloakMap := make(map[string]string, len(matches))
	counters := make(map[model.PIIType]int)

	for i := range matches {
		m := &matches[i]
		switch d.cfg.Format {
		case FormatHash:
			m.Replacement = fmt.Sprintf("[%s_%s]", m.Type.Tag(), shortDigest(m.Value))
		case FormatRedact:
			if d.cfg.PreserveFormat {
				m.Replacement = strings.Repeat("*", len(m.Value))
			} else {
				m.Replacement = "****"
			}
		default:
			counters[m.Type]++
			m.Replacement = fmt.Sprintf("[%s_%d]", m.Type.Tag(), counters[m.Type])
		}
		// First writer wins: identical tokens (hash of equal values,
		// redact runs) must keep a single, consistent original.
		if _, exists := cloakMap[m.Replacement]; !exists {
			cloakMap[m.Replacement] = m.Value
		}
	}

	out := text
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		out = out[:m.Start] + m.Replacement + out[m.End:]
	}

	return CloakedText{Text: out, Matches: matches, Map: cloakMap}
}

// Uncloak restores original values by literal token substitution.
// It is purely textual: no detection runs, no detector state is needed.
// Longer tokens are substituted first so no token is clobbered by a
// prefix of another.
func Uncloak(text string, cloakMap map[string]string) string {
	tokens := make([]string, 0, len(cloakMap))
	for tok := range cloakMap {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})

	for _, tok := range tokens {
		text = strings.ReplaceAll(text, tok, cloakMap[tok])
	}
	return text
}

// CheckLeaks scans a provider response for original values that should
// have stayed cloaked. Returns the leaked values; empty means clean.
func CheckLeaks(response string, cloaked CloakedText) []string {
	var leaks []string
	seen := make(map[string]bool)
	for _, val := range cloaked.Map {
		if !seen[val] && strings.Contains(response, val) {
			seen[val] = true
			leaks = append(leaks, val)
		}
	}
	sort.Strings(leaks)
	return leaks
}

// shortDigest returns the first 8 hex chars of the value's SHA-256.
func shortDigest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:4])
}
