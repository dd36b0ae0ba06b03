// Package mcp exposes the shield pipeline as MCP (Model Context
// Protocol) tools over stdio, so an agent framework can route every
// provider-bound message through inspection without linking the shield
// directly.
package mcp

import (
	"context"
	"fmt"
	"os"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hiveshield/hiveshield/internal/audit"
	"github.com/hiveshield/hiveshield/internal/config"
	"github.com/hiveshield/hiveshield/internal/shield"
)

// Config holds MCP server configuration.
type Config struct {
	// ConfigPath is the shield YAML config. Empty falls back to the
	// HIVESHIELD_CONFIG env var, then the default location.
	ConfigPath string
}

// Server wraps the MCP SDK server around a hot-swappable shield.
// Reload rebuilds the shield from disk; in-flight calls finish on the
// instance they started with.
type Server struct {
	mcpServer  *mcpsdk.Server
	configPath string
	auditLog   *audit.Log

	mu     sync.RWMutex
	shield *shield.HiveShield
}

// New builds the shield from config and registers the tools.
func New(cfg Config) (*Server, error) {
	f, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	h, err := buildShield(f)
	if err != nil {
		return nil, err
	}

	var auditLog *audit.Log
	if f.AuditLog != "" {
		auditLog, err = audit.Open(f.AuditLog)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	s := &Server{
		configPath: cfg.ConfigPath,
		auditLog:   auditLog,
		shield:     h,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "hiveshield",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Reload rebuilds the shield from the config on disk and swaps it in.
// A config that fails to parse or validate leaves the running shield
// untouched. Counters restart from zero on a successful swap; the
// audit log stays on its original path for the life of the server.
func (s *Server) Reload() error {
	f, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	h, err := buildShield(f)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.shield = h
	s.mu.Unlock()
	return nil
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

func (s *Server) recordAudit(entry audit.Entry) {
	if s.auditLog != nil {
		if err := s.auditLog.Record(entry); err != nil {
			fmt.Fprintf(os.Stderr, "audit: %v\n", err)
		}
	}
}

// current returns the shield instance to use for one call.
func (s *Server) current() *shield.HiveShield {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shield
}

// Stats reports the current shield's counters.
func (s *Server) Stats() map[string]uint64 {
	h := s.current()
	return map[string]uint64{
		"pii_detections":  h.PIIDetectionCount(),
		"secrets_blocked": h.SecretsBlockedCount(),
		"threats_caught":  h.ThreatsCaughtCount(),
	}
}

func buildShield(f *config.File) (*shield.HiveShield, error) {
	cfg, err := f.Shield()
	if err != nil {
		return nil, err
	}
	h, err := shield.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build shield: %w", err)
	}
	return h, nil
}

// registerTools adds the shield tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hiveshield_check_outgoing",
		Description: "Inspect a message before it leaves for an AI provider. Blocked messages return an error with the reason; cloaked messages return the safe text plus a cloak map for later restoration.",
	}, s.handleCheckOutgoing)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hiveshield_check_incoming",
		Description: "Inspect a provider response for secrets, PII, and threat indicators. Findings produce a warning, never a block.",
	}, s.handleCheckIncoming)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hiveshield_uncloak",
		Description: "Restore original values in a provider response using the cloak map from the matching outgoing check.",
	}, s.handleUncloak)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hiveshield_stats",
		Description: "Report cumulative shield counters: PII detections, secret blocks, threats caught.",
	}, s.handleStats)
}
