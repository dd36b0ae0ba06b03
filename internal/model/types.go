// Package model defines the shared closed enums of the shield pipeline:
// data categories, risk ordering, classification ceilings, and provider
// trust. Every type here is a value type safe to copy and compare.
package model

import "fmt"

// PIIType classifies a detected span of personal data.
type PIIType string

const (
	PIIEmail          PIIType = "email"
	PIIPhone          PIIType = "phone"
	PIISSN            PIIType = "ssn"
	PIICreditCard     PIIType = "credit_card"
	PIIIPAddress      PIIType = "ip_address"
	PIIName           PIIType = "name"
	PIIAddress        PIIType = "address"
	PIIDateOfBirth    PIIType = "date_of_birth"
	PIIPassport       PIIType = "passport"
	PIIDriversLicense PIIType = "drivers_license"
	PIIBankAccount    PIIType = "bank_account"
)

// CustomPII returns a PIIType for an operator-defined pattern.
// The label becomes part of the cloak token tag.
func CustomPII(label string) PIIType {
	return PIIType("custom:" + label)
}

// piiTags maps built-in PII types to the uppercase tag used in cloak tokens.
var piiTags = map[PIIType]string{
	PIIEmail:          "EMAIL",
	PIIPhone:          "PHONE",
	PIISSN:            "SSN",
	PIICreditCard:     "CREDIT_CARD",
	PIIIPAddress:      "IP_ADDRESS",
	PIIName:           "NAME",
	PIIAddress:        "ADDRESS",
	PIIDateOfBirth:    "DATE_OF_BIRTH",
	PIIPassport:       "PASSPORT",
	PIIDriversLicense: "DRIVERS_LICENSE",
	PIIBankAccount:    "BANK_ACCOUNT",
}

// Tag returns the uppercase token tag for a PII type, e.g. "EMAIL".
// Custom types use their sanitized label.
func (t PIIType) Tag() string {
	if tag, ok := piiTags[t]; ok {
		return tag
	}
	s := string(t)
	if len(s) > 7 && s[:7] == "custom:" {
		s = s[7:]
	}
	return sanitizeTag(s)
}

func sanitizeTag(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'):
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// SecretType classifies a detected credential or token.
type SecretType string

const (
	SecretAPIKey        SecretType = "api_key"
	SecretAWSAccessKey  SecretType = "aws_access_key"
	SecretAWSSecretKey  SecretType = "aws_secret_key"
	SecretGithubToken   SecretType = "github_token"
	SecretGitlabToken   SecretType = "gitlab_token"
	SecretSlackToken    SecretType = "slack_token"
	SecretPrivateKey    SecretType = "private_key"
	SecretPassword      SecretType = "password"
	SecretJWTToken      SecretType = "jwt_token"
	SecretGenericSecret SecretType = "generic_secret"
	SecretDatabaseURL   SecretType = "database_url"
)

// CustomSecret returns a SecretType for an operator-defined pattern.
func CustomSecret(label string) SecretType {
	return SecretType("custom:" + label)
}

// RiskLevel is a totally ordered severity scale shared by the secret
// scanner and the vulnerability assessor.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskNone:
		return "none"
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// ParseRiskLevel converts a config string to a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case "none":
		return RiskNone, nil
	case "low":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	case "critical":
		return RiskCritical, nil
	default:
		return RiskNone, fmt.Errorf("unknown risk level %q", s)
	}
}

// DataClassification is the sensitivity ceiling a destination may receive.
// Higher values are more sensitive.
type DataClassification int

const (
	ClassPublic DataClassification = iota
	ClassInternal
	ClassConfidential
	ClassRestricted
)

func (c DataClassification) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassInternal:
		return "internal"
	case ClassConfidential:
		return "confidential"
	case ClassRestricted:
		return "restricted"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// ParseClassification converts a config string to a DataClassification.
func ParseClassification(s string) (DataClassification, error) {
	switch s {
	case "public":
		return ClassPublic, nil
	case "internal":
		return ClassInternal, nil
	case "confidential":
		return ClassConfidential, nil
	case "restricted":
		return ClassRestricted, nil
	default:
		return ClassPublic, fmt.Errorf("unknown classification %q", s)
	}
}

// ProviderTrust ranks how much latitude a destination is given.
// Trust informs policy defaults; it never overrides an explicit
// cloaking requirement.
type ProviderTrust string

const (
	TrustLocal     ProviderTrust = "local"
	TrustTrusted   ProviderTrust = "trusted"
	TrustUntrusted ProviderTrust = "untrusted"
)

// ParseTrust converts a config string to a ProviderTrust.
func ParseTrust(s string) (ProviderTrust, error) {
	switch ProviderTrust(s) {
	case TrustLocal, TrustTrusted, TrustUntrusted:
		return ProviderTrust(s), nil
	default:
		return TrustUntrusted, fmt.Errorf("unknown provider trust %q", s)
	}
}
