package vuln

import (
	"regexp"
	"sync"

	"github.com/hiveshield/hiveshield/internal/model"
)

// indicator is one injection/exfiltration signal. Severity feeds the
// assessment's threat level; description explains the finding without
// echoing the matched text.
type indicator struct {
	id          string
	re          *regexp.Regexp
	severity    model.RiskLevel
	description string
}

// promptIndicators detect attempts to subvert safety behavior in
// outgoing prompts. Compiled once; MustCompile failures are build errors.
var promptIndicators = sync.OnceValue(func() []indicator {
	return []indicator{
		{
			id:          "instruction_override",
			re:          regexp.MustCompile(`(?i)\b(?:ignore|disregard|forget)\s+(?:all\s+)?(?:previous|prior|above|earlier)\s+(?:instructions|prompts|rules|directions|context)`),
			severity:    model.RiskHigh,
			description: "instruction override language",
		},
		{
			id:          "system_prompt_exfiltration",
			re:          regexp.MustCompile(`(?i)\b(?:reveal|show|print|repeat|output|leak)\s+(?:your|the|its)\s+(?:system\s+prompt|instructions|initial\s+prompt|hidden\s+prompt)`),
			severity:    model.RiskHigh,
			description: "attempt to reveal system prompt",
		},
		{
			id:          "credential_solicitation",
			re:          regexp.MustCompile(`(?i)\b(?:send|give|show|reveal|tell)\s+(?:me\s+)?(?:your|the|any|all)\s+(?:password|credential|secret|api\s*key|token)s?\b`),
			severity:    model.RiskHigh,
			description: "request for credentials or secrets",
		},
		{
			id:          "jailbreak_phrasing",
			re:          regexp.MustCompile(`(?i)\b(?:jailbreak|do\s+anything\s+now|dan\s+mode|developer\s+mode|no\s+restrictions|without\s+any\s+filters?|uncensored)\b`),
			severity:    model.RiskHigh,
			description: "jailbreak phrasing",
		},
		{
			id:          "safety_bypass",
			re:          regexp.MustCompile(`(?i)\b(?:bypass|disable|turn\s+off|remove)\s+(?:the\s+|your\s+)?(?:safety|security|content|guard|filter)`),
			severity:    model.RiskHigh,
			description: "attempt to disable safety controls",
		},
		{
			id:          "role_override",
			re:          regexp.MustCompile(`(?i)\byou\s+are\s+(?:now|no\s+longer)\b|\bpretend\s+(?:to\s+be|you\s+are)\b|\bnew\s+persona\b`),
			severity:    model.RiskMedium,
			description: "role override phrasing",
		},
		{
			id:          "control_tokens",
			re:          regexp.MustCompile(`<\|im_start\|>|<\|im_end\|>|<\|endoftext\|>|\[INST\]|\[/INST\]|<<SYS>>`),
			severity:    model.RiskHigh,
			description: "anomalous model control tokens",
		},
		{
			id:          "destructive_intent",
			re:          regexp.MustCompile(`(?i)\b(?:delete|destroy|wipe|erase)\s+(?:everything|all\s+(?:files|data))\b|\brm\s+-rf\s+/`),
			severity:    model.RiskHigh,
			description: "destructive intent",
		},
		{
			id:          "encoded_payload",
			re:          regexp.MustCompile(`[A-Za-z0-9+/]{80,}={0,2}`),
			severity:    model.RiskMedium,
			description: "long encoded payload",
		},
		{
			id:          "exfiltration_directive",
			re:          regexp.MustCompile(`(?i)\b(?:post|send|upload|forward|exfiltrate)\b.{0,40}\bhttps?://`),
			severity:    model.RiskMedium,
			description: "directive to transmit data to an external URL",
		},
	}
})

// responseIndicators detect leaked internal instructions or exfiltrated
// material in incoming model responses.
var responseIndicators = sync.OnceValue(func() []indicator {
	return []indicator{
		{
			id:          "leaked_system_prompt",
			re:          regexp.MustCompile(`(?i)\bmy\s+(?:system\s+)?(?:prompt|instructions)\s+(?:is|are|say)\b|\bsystem\s+prompt:\s`),
			severity:    model.RiskHigh,
			description: "response discloses internal instructions",
		},
		{
			id:          "credential_disclosure",
			re:          regexp.MustCompile(`(?i)\bhere\s+(?:is|are)\s+(?:the|your|my)\s+(?:password|credential|secret|api\s*key|token)s?\b`),
			severity:    model.RiskHigh,
			description: "response volunteers credential material",
		},
		{
			id:          "control_tokens",
			re:          regexp.MustCompile(`<\|im_start\|>|<\|im_end\|>|<\|endoftext\|>|\[INST\]|\[/INST\]|<<SYS>>`),
			severity:    model.RiskHigh,
			description: "anomalous model control tokens",
		},
		{
			id:          "embedded_instruction",
			re:          regexp.MustCompile(`(?i)\b(?:ignore|disregard)\s+(?:all\s+)?(?:previous|prior)\s+(?:instructions|rules)`),
			severity:    model.RiskMedium,
			description: "response embeds injection phrasing",
		},
		{
			id:          "encoded_payload",
			re:          regexp.MustCompile(`[A-Za-z0-9+/]{120,}={0,2}`),
			severity:    model.RiskMedium,
			description: "long encoded payload",
		},
	}
})
