package pii

import "github.com/hiveshield/hiveshield/internal/model"

// Report buckets detection results by type and attaches a coarse risk
// label derived from the total match count only. The label is
// type-agnostic: an SSN and an IP address count equally.
type Report struct {
	Total  int                   `json:"total"`
	ByType map[model.PIIType]int `json:"by_type"`
	Risk   string                `json:"risk"`
}

// DetectAndReport runs detection and summarizes the matches.
// Risk thresholds: none (0), low (1–2), medium (3–5), high (>5).
func (d *Detector) DetectAndReport(text string) Report {
	matches := d.Detect(text)

	byType := make(map[model.PIIType]int)
	for _, m := range matches {
		byType[m.Type]++
	}

	return Report{
		Total:  len(matches),
		ByType: byType,
		Risk:   countRisk(len(matches)),
	}
}

func countRisk(n int) string {
	switch {
	case n == 0:
		return "none"
	case n <= 2:
		return "low"
	case n <= 5:
		return "medium"
	default:
		return "high"
	}
}
