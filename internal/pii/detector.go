// Package pii detects personal data in free text and cloaks it with
// reversible placeholder tokens. Detection is regex-driven and
// deterministic; cloaking records a token→original map so a later
// response can be uncloaked without re-running detection.
package pii

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/hiveshield/hiveshield/internal/model"
)

// Match is a single occurrence of personal data in text.
// Offsets are byte offsets into the scanned string. After Detect returns,
// matches are sorted by Start and guaranteed non-overlapping.
type Match struct {
	Type        model.PIIType `json:"type"`
	Value       string        `json:"value"`
	Replacement string        `json:"replacement,omitempty"`
	Start       int           `json:"start"`
	End         int           `json:"end"`
	Confidence  float64       `json:"confidence"`
}

// ExtraPattern defines an operator-supplied detection pattern.
type ExtraPattern struct {
	Label      string
	Regex      string
	Confidence float64
}

// Config controls which patterns run and how matches are cloaked.
type Config struct {
	// TypesToDetect restricts detection to the listed types.
	// Empty means scan for everything.
	TypesToDetect []model.PIIType

	// Format selects the cloak token style.
	Format CloakFormat

	// PreserveFormat makes FormatRedact emit an asterisk run matching
	// the original length instead of a fixed "****".
	PreserveFormat bool

	// ExtraPatterns are custom patterns compiled at construction.
	ExtraPatterns []ExtraPattern
}

// Detector scans text for personal data. Construct once and share;
// all methods are safe for concurrent use.
type Detector struct {
	cfg   Config
	extra []pattern
}

// NewDetector compiles custom patterns and returns a ready detector.
// An invalid custom regex is a configuration error and fails fast.
func NewDetector(cfg Config) (*Detector, error) {
	var extra []pattern
	for i, ep := range cfg.ExtraPatterns {
		if ep.Label == "" {
			return nil, fmt.Errorf("extra pattern %d: label is required", i)
		}
		re, err := regexp.Compile(ep.Regex)
		if err != nil {
			return nil, fmt.Errorf("extra pattern %q: invalid regex: %w", ep.Label, err)
		}
		conf := ep.Confidence
		if conf <= 0 || conf > 1 {
			conf = 0.70
		}
		extra = append(extra, pattern{
			typ:        model.CustomPII(ep.Label),
			re:         re,
			confidence: conf,
		})
	}
	return &Detector{cfg: cfg, extra: extra}, nil
}

// enabled reports whether a pattern type passes the allowlist.
// An empty allowlist enables everything.
func (d *Detector) enabled(typ model.PIIType) bool {
	if len(d.cfg.TypesToDetect) == 0 {
		return true
	}
	for _, t := range d.cfg.TypesToDetect {
		if t == typ {
			return true
		}
	}
	return false
}

// Detect runs every enabled pattern over text and returns the surviving
// matches sorted ascending by start offset, non-overlapping.
func (d *Detector) Detect(text string) []Match {
	var candidates []Match

	scan := func(p pattern) {
		if !d.enabled(p.typ) {
			return
		}
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			candidates = append(candidates, Match{
				Type:       p.typ,
				Value:      text[loc[0]:loc[1]],
				Start:      loc[0],
				End:        loc[1],
				Confidence: p.confidence,
			})
		}
	}

	for _, p := range builtinPatterns() {
		scan(p)
	}
	for _, p := range d.extra {
		scan(p)
	}

	return resolveOverlaps(candidates)
}

// resolveOverlaps sorts candidates by start offset and discards the
// lower-confidence match of any overlapping pair. Ties keep the
// earlier-seen candidate. The result is safely substitutable.
func resolveOverlaps(candidates []Match) []Match {
	if len(candidates) == 0 {
		return nil
	}

	// Stable sort preserves scan order for equal starts, which is what
	// makes confidence ties deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start < candidates[j].Start
	})

	kept := candidates[:1]
	for _, m := range candidates[1:] {
		last := &kept[len(kept)-1]
		if m.Start >= last.End {
			kept = append(kept, m)
			continue
		}
		// Overlap: higher confidence wins, tie keeps the earlier one.
		if m.Confidence > last.Confidence {
			*last = m
		}
	}
	return kept
}
