package pii

import (
	"regexp"
	"sync"

	"github.com/hiveshield/hiveshield/internal/model"
)

// pattern pairs a compiled regex with its PII type and a fixed confidence.
// Confidence resolves overlaps: when two patterns claim overlapping spans,
// the higher-confidence match survives.
type pattern struct {
	typ        model.PIIType
	re         *regexp.Regexp
	confidence float64
}

// builtinPatterns compiles the built-in detection table exactly once.
// A malformed pattern here is a build error, not a runtime condition —
// MustCompile panics at first use and that is intentional.
var builtinPatterns = sync.OnceValue(func() []pattern {
	return []pattern{
		{
			typ:        model.PIIEmail,
			re:         regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`),
			confidence: 0.95,
		},
		{
			typ:        model.PIISSN,
			re:         regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			confidence: 0.90,
		},
		{
			typ:        model.PIICreditCard,
			re:         regexp.MustCompile(`\b(?:\d{4}[ \-]){3}\d{4}\b|\b\d{15,16}\b`),
			confidence: 0.85,
		},
		{
			typ:        model.PIIPhone,
			re:         regexp.MustCompile(`\(?\d{3}\)?[\-. ]\d{3}[\-. ]\d{4}\b`),
			confidence: 0.80,
		},
		{
			typ:        model.PIIIPAddress,
			re:         regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
			confidence: 0.75,
		},
	}
})
