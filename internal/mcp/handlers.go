package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hiveshield/hiveshield/internal/audit"
	"github.com/hiveshield/hiveshield/internal/pii"
	"github.com/hiveshield/hiveshield/internal/shield"
)

// --- Input/Output types ---

// CheckOutgoingInput defines parameters for hiveshield_check_outgoing.
type CheckOutgoingInput struct {
	Text        string `json:"text" jsonschema:"message text bound for the provider"`
	Destination string `json:"destination" jsonschema:"destination identifier, e.g. openai"`
}

// CheckOutgoingOutput carries the decision. OutgoingText is the text to
// actually send: cloaked when cloaking applied, empty when blocked.
type CheckOutgoingOutput struct {
	Action       string            `json:"action"`
	Reason       string            `json:"reason,omitempty"`
	OutgoingText string            `json:"outgoing_text,omitempty"`
	PIIFound     int               `json:"pii_found,omitempty"`
	SecretsFound int               `json:"secrets_found,omitempty"`
	CloakMap     map[string]string `json:"cloak_map,omitempty"`
}

// CheckIncomingInput defines parameters for hiveshield_check_incoming.
type CheckIncomingInput struct {
	Text string `json:"text" jsonschema:"provider response text"`
}

// CheckIncomingOutput carries the inspection outcome for a response.
type CheckIncomingOutput struct {
	Action       string `json:"action"`
	Reason       string `json:"reason,omitempty"`
	PIIFound     int    `json:"pii_found,omitempty"`
	SecretsFound int    `json:"secrets_found,omitempty"`
}

// UncloakInput defines parameters for hiveshield_uncloak.
type UncloakInput struct {
	Text     string            `json:"text" jsonschema:"response text containing cloak tokens"`
	CloakMap map[string]string `json:"cloak_map" jsonschema:"token to original value map from the outgoing check"`
}

// UncloakOutput is the restored text.
type UncloakOutput struct {
	Text string `json:"text"`
}

// StatsInput is empty — no parameters needed.
type StatsInput struct{}

// StatsOutput reports the cumulative counters.
type StatsOutput struct {
	PIIDetections  uint64 `json:"pii_detections"`
	SecretsBlocked uint64 `json:"secrets_blocked"`
	ThreatsCaught  uint64 `json:"threats_caught"`
}

// --- Handlers ---

func (s *Server) handleCheckOutgoing(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckOutgoingInput) (*mcpsdk.CallToolResult, CheckOutgoingOutput, error) {
	r := s.current().ProcessOutgoing(input.Text, input.Destination)

	out := CheckOutgoingOutput{
		Action:       r.Action.Kind.String(),
		Reason:       r.Action.Reason,
		OutgoingText: r.OutgoingText(input.Text),
		PIIFound:     len(r.PII),
		SecretsFound: len(r.Secrets),
	}
	if r.Action.Cloaked != nil {
		out.CloakMap = r.Action.Cloaked.Map
	}

	s.recordAudit(audit.Entry{
		Direction:   "outgoing",
		Destination: input.Destination,
		Action:      out.Action,
		Reason:      out.Reason,
		PIIFound:    out.PIIFound,
		Secrets:     out.SecretsFound,
	})

	if r.Action.Kind == shield.KindBlock {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handleCheckIncoming(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckIncomingInput) (*mcpsdk.CallToolResult, CheckIncomingOutput, error) {
	r := s.current().ProcessIncoming(input.Text)

	out := CheckIncomingOutput{
		Action:       r.Action.Kind.String(),
		Reason:       r.Action.Reason,
		PIIFound:     len(r.PII),
		SecretsFound: len(r.Secrets),
	}

	s.recordAudit(audit.Entry{
		Direction: "incoming",
		Action:    out.Action,
		Reason:    out.Reason,
		PIIFound:  out.PIIFound,
		Secrets:   out.SecretsFound,
	})

	return nil, out, nil
}

func (s *Server) handleUncloak(ctx context.Context, req *mcpsdk.CallToolRequest, input UncloakInput) (*mcpsdk.CallToolResult, UncloakOutput, error) {
	restored := pii.Uncloak(input.Text, input.CloakMap)
	return nil, UncloakOutput{Text: restored}, nil
}

func (s *Server) handleStats(ctx context.Context, req *mcpsdk.CallToolRequest, input StatsInput) (*mcpsdk.CallToolResult, StatsOutput, error) {
	h := s.current()
	return nil, StatsOutput{
		PIIDetections:  h.PIIDetectionCount(),
		SecretsBlocked: h.SecretsBlockedCount(),
		ThreatsCaught:  h.ThreatsCaughtCount(),
	}, nil
}
