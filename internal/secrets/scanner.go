// Package secrets scans text for leaked credentials and tokens.
// Matches never carry the full secret: masking is applied at detection
// time and is irreversible. No API path exposes the un-masked value.
package secrets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hiveshield/hiveshield/internal/model"
)

// Match is one detected secret. Value holds the masked form only.
type Match struct {
	Type       model.SecretType `json:"type"`
	Value      string           `json:"value"`
	Location   string           `json:"location"`
	Line       int              `json:"line"`
	Confidence float64          `json:"confidence"`
}

// Result is the outcome of a full scan.
type Result struct {
	Matches      []Match         `json:"matches"`
	FilesScanned int             `json:"files_scanned"`
	Risk         model.RiskLevel `json:"risk"`
}

// ExtraPattern defines an operator-supplied secret pattern.
type ExtraPattern struct {
	Label      string
	Regex      string
	Confidence float64
	Risk       model.RiskLevel
}

// Scanner detects credentials in text. Construct once and share;
// all methods are safe for concurrent use.
type Scanner struct {
	extra []secretPattern
}

// NewScanner compiles custom patterns and returns a ready scanner.
// An invalid custom regex is a configuration error and fails fast.
func NewScanner(extras ...ExtraPattern) (*Scanner, error) {
	var extra []secretPattern
	for i, ep := range extras {
		if ep.Label == "" {
			return nil, fmt.Errorf("extra secret pattern %d: label is required", i)
		}
		re, err := regexp.Compile(ep.Regex)
		if err != nil {
			return nil, fmt.Errorf("extra secret pattern %q: invalid regex: %w", ep.Label, err)
		}
		conf := ep.Confidence
		if conf <= 0 || conf > 1 {
			conf = 0.70
		}
		risk := ep.Risk
		if risk == model.RiskNone {
			risk = model.RiskMedium
		}
		extra = append(extra, secretPattern{
			typ:        model.CustomSecret(ep.Label),
			re:         re,
			confidence: conf,
			risk:       risk,
		})
	}
	return &Scanner{extra: extra}, nil
}

// ScanText scans text with the default location label.
func (s *Scanner) ScanText(text string) []Match {
	return s.ScanTextWithContext(text, "input")
}

// ScanTextWithContext scans text and labels every match with location.
// Matches are sorted by line number, then by type for determinism.
func (s *Scanner) ScanTextWithContext(text, location string) []Match {
	var matches []Match

	scan := func(p secretPattern) {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			matches = append(matches, Match{
				Type:       p.typ,
				Value:      MaskSecret(text[loc[0]:loc[1]]),
				Location:   location,
				Line:       lineOf(text, loc[0]),
				Confidence: p.confidence,
			})
		}
	}

	for _, p := range builtinSecretPatterns() {
		scan(p)
	}
	for _, p := range s.extra {
		scan(p)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Line != matches[j].Line {
			return matches[i].Line < matches[j].Line
		}
		return matches[i].Type < matches[j].Type
	})

	return matches
}

// Scan runs a full scan over a single text and aggregates risk.
func (s *Scanner) Scan(text string) Result {
	matches := s.ScanText(text)
	return Result{
		Matches:      matches,
		FilesScanned: 1,
		Risk:         s.RiskLevel(matches),
	}
}

// RiskLevel computes the overall risk for a set of matches: the maximum
// intrinsic pattern weight, escalated by volume. Three or more matches
// floor the level at High; five or more floor it at Critical, regardless
// of individual pattern weights.
func (s *Scanner) RiskLevel(matches []Match) model.RiskLevel {
	if len(matches) == 0 {
		return model.RiskNone
	}

	weights := make(map[model.SecretType]model.RiskLevel)
	for _, p := range builtinSecretPatterns() {
		weights[p.typ] = p.risk
	}
	for _, p := range s.extra {
		weights[p.typ] = p.risk
	}

	level := model.RiskLow
	for _, m := range matches {
		if w := weights[m.Type]; w > level {
			level = w
		}
	}

	if len(matches) >= 5 && level < model.RiskCritical {
		level = model.RiskCritical
	} else if len(matches) >= 3 && level < model.RiskHigh {
		level = model.RiskHigh
	}

	return level
}

// MaskSecret irreversibly masks a secret value: the first 4 characters
// plus a fixed "****". Values of 4 characters or fewer mask entirely.
func MaskSecret(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return value[:4] + "****"
}

// lineOf returns the 1-based line number of byte offset pos.
func lineOf(text string, pos int) int {
	return 1 + strings.Count(text[:pos], "\n")
}
