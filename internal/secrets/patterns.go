package secrets

import (
	"regexp"
	"sync"

	"github.com/hiveshield/hiveshield/internal/model"
)

// secretPattern pairs a compiled regex with a fixed confidence and an
// intrinsic risk weight. Weights feed aggregate risk scoring: well-known
// credential formats are Critical, key=value heuristics are Medium.
type secretPattern struct {
	typ        model.SecretType
	re         *regexp.Regexp
	confidence float64
	risk       model.RiskLevel
}

// builtinSecretPatterns compiles the detection table exactly once.
// MustCompile makes a malformed pattern fail at first use — a build
// error, never a silently skipped pattern.
var builtinSecretPatterns = sync.OnceValue(func() []secretPattern {
	return []secretPattern{
		{
			// All documented AWS access key ID prefixes.
			typ:        model.SecretAWSAccessKey,
			re:         regexp.MustCompile(`\b(?:AKIA|ABIA|ACCA|AGPA|AIDA|AIPA|ANPA|ANVA|APKA|AROA|ASCA|ASIA)[A-Z0-9]{16}\b`),
			confidence: 0.95,
			risk:       model.RiskCritical,
		},
		{
			typ:        model.SecretAWSSecretKey,
			re:         regexp.MustCompile(`(?i)\baws_?secret_?(?:access_?)?key\b[ \t]*[=:][ \t]*["']?[A-Za-z0-9/+=]{40}\b`),
			confidence: 0.90,
			risk:       model.RiskCritical,
		},
		{
			// Classic and fine-grained GitHub tokens.
			typ:        model.SecretGithubToken,
			re:         regexp.MustCompile(`\b(?:gh[posr]_[A-Za-z0-9]{36}|github_pat_[A-Za-z0-9]+_[A-Za-z0-9]{30,})\b`),
			confidence: 0.95,
			risk:       model.RiskCritical,
		},
		{
			typ:        model.SecretGitlabToken,
			re:         regexp.MustCompile(`\bglpat-[A-Za-z0-9_\-]{20,}\b`),
			confidence: 0.95,
			risk:       model.RiskHigh,
		},
		{
			typ:        model.SecretSlackToken,
			re:         regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9\-]{10,}\b`),
			confidence: 0.90,
			risk:       model.RiskHigh,
		},
		{
			typ:        model.SecretPrivateKey,
			re:         regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----`),
			confidence: 0.99,
			risk:       model.RiskCritical,
		},
		{
			typ:        model.SecretJWTToken,
			re:         regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]+`),
			confidence: 0.85,
			risk:       model.RiskMedium,
		},
		{
			// Connection strings with inline credentials.
			typ:        model.SecretDatabaseURL,
			re:         regexp.MustCompile(`\b(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqp)://[^\s:@/]+:[^\s@]+@[^\s]+`),
			confidence: 0.90,
			risk:       model.RiskHigh,
		},
		{
			typ:        model.SecretAPIKey,
			re:         regexp.MustCompile(`(?i)\b(?:api[_\-]?key|access[_\-]?key|auth[_\-]?token)\b[ \t]*[=:][ \t]*["']?[A-Za-z0-9_\-./+=]{16,}`),
			confidence: 0.80,
			risk:       model.RiskMedium,
		},
		{
			typ:        model.SecretPassword,
			re:         regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\b[ \t]*[=:][ \t]*["']?[^\s"']{6,}`),
			confidence: 0.75,
			risk:       model.RiskMedium,
		},
		{
			typ:        model.SecretGenericSecret,
			re:         regexp.MustCompile(`(?i)\b(?:secret|credential)s?\b[ \t]*[=:][ \t]*["']?[A-Za-z0-9_\-./+=]{8,}`),
			confidence: 0.70,
			risk:       model.RiskMedium,
		},
	}
})
