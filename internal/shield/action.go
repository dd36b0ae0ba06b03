package shield

import (
	"fmt"
	"time"

	"github.com/hiveshield/hiveshield/internal/pii"
	"github.com/hiveshield/hiveshield/internal/secrets"
	"github.com/hiveshield/hiveshield/internal/vuln"
)

// ActionKind discriminates the closed set of pipeline outcomes.
// Every consumption site switches exhaustively over these values.
type ActionKind int

const (
	// KindAllow passes the text through unchanged.
	KindAllow ActionKind = iota

	// KindCloakAndAllow passes the cloaked text through; the cloak map
	// travels with the result for later restoration.
	KindCloakAndAllow

	// KindBlock stops the message entirely.
	KindBlock

	// KindWarn passes the text through but flags it for the caller.
	KindWarn
)

func (k ActionKind) String() string {
	switch k {
	case KindAllow:
		return "allow"
	case KindCloakAndAllow:
		return "cloak_and_allow"
	case KindBlock:
		return "block"
	case KindWarn:
		return "warn"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Action is the single outcome of a pipeline run. Reason is set for
// Block and Warn; Cloaked is set only for CloakAndAllow.
type Action struct {
	Kind    ActionKind       `json:"kind"`
	Reason  string           `json:"reason,omitempty"`
	Cloaked *pii.CloakedText `json:"cloaked,omitempty"`
}

func allow() Action                        { return Action{Kind: KindAllow} }
func block(reason string) Action           { return Action{Kind: KindBlock, Reason: reason} }
func warn(reason string) Action            { return Action{Kind: KindWarn, Reason: reason} }
func cloakAndAllow(ct pii.CloakedText) Action {
	return Action{Kind: KindCloakAndAllow, Cloaked: &ct}
}

// Result is the full outcome of one shield call. Produced fresh per
// call and owned by the caller; the shield retains nothing.
type Result struct {
	Action     Action           `json:"action"`
	PII        []pii.Match      `json:"pii,omitempty"`
	Secrets    []secrets.Match  `json:"secrets,omitempty"`
	Assessment *vuln.Assessment `json:"assessment,omitempty"`
	Elapsed    time.Duration    `json:"elapsed"`
}

// OutgoingText returns the text a transport should actually send:
// the cloaked form for CloakAndAllow, the original for Allow/Warn,
// and empty for Block.
func (r Result) OutgoingText(original string) string {
	switch r.Action.Kind {
	case KindAllow, KindWarn:
		return original
	case KindCloakAndAllow:
		return r.Action.Cloaked.Text
	case KindBlock:
		return ""
	default:
		return ""
	}
}
