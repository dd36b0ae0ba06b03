package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	shieldmcp "github.com/hiveshield/hiveshield/internal/mcp"
)

var mcpWatch bool

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVar(&mcpWatch, "watch", true, "Hot-reload the shield when the config file changes")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs hiveshield as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes tools: check_outgoing, check_incoming, uncloak, stats.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv, err := shieldmcp.New(shieldmcp.Config{ConfigPath: configPath})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	if mcpWatch {
		reloader, err := shieldmcp.NewReloader(srv, configPath)
		if err != nil {
			return fmt.Errorf("failed to create reloader: %w", err)
		}
		go reloader.Run(ctx)
	}

	fmt.Fprintln(os.Stderr, "hiveshield MCP server running on stdio")

	err = srv.Run(ctx)

	stats := srv.Stats()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "session: %d PII detection(s), %d secret block(s), %d threat(s) caught\n",
		stats["pii_detections"], stats["secrets_blocked"], stats["threats_caught"])

	return err
}
