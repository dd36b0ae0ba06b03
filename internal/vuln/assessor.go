// Package vuln classifies prompt-injection and data-exfiltration intent
// in prompts and model responses. Detection is heuristic and
// deterministic: a fixed indicator table, no statistics, no network.
package vuln

import "github.com/hiveshield/hiveshield/internal/model"

// Assessment is the outcome of one assessment call. Produced fresh per
// call; never retained by the assessor.
type Assessment struct {
	ThreatLevel model.RiskLevel `json:"threat_level"`
	SafeToSend  bool            `json:"safe_to_send"`
	Indicators  []string        `json:"indicators,omitempty"`
}

// Assessor scans text against fixed indicator sets. The zero value is
// ready to use; all methods are safe for concurrent use.
type Assessor struct{}

// NewAssessor returns a ready assessor.
func NewAssessor() *Assessor {
	return &Assessor{}
}

// AssessPrompt checks an outgoing prompt for attempts to subvert
// safety behavior.
func (a *Assessor) AssessPrompt(text string) Assessment {
	return assess(text, promptIndicators())
}

// AssessResponse checks an incoming model response for leaked internal
// instructions or exfiltrated material.
func (a *Assessor) AssessResponse(text string) Assessment {
	return assess(text, responseIndicators())
}

// assess runs every indicator and folds matches into one assessment.
// The threat level is the maximum matched severity, bumped one step when
// three or more distinct indicators fire. SafeToSend flips false at
// High or worse.
func assess(text string, indicators []indicator) Assessment {
	level := model.RiskNone
	var matched []string

	for _, ind := range indicators {
		if ind.re.MatchString(text) {
			matched = append(matched, ind.description)
			if ind.severity > level {
				level = ind.severity
			}
		}
	}

	if len(matched) >= 3 && level < model.RiskCritical {
		level++
	}

	return Assessment{
		ThreatLevel: level,
		SafeToSend:  level < model.RiskHigh,
		Indicators:  matched,
	}
}
