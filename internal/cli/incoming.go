package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hiveshield/hiveshield/internal/shield"
)

var incomingFormat string

func init() {
	rootCmd.AddCommand(incomingCmd)
	incomingCmd.Flags().StringVarP(&incomingFormat, "format", "f", "text", "Output format (text|json)")
}

var incomingCmd = &cobra.Command{
	Use:   "incoming [text]",
	Short: "Inspect a provider response",
	Long: "Scans a response from an AI provider for secrets, PII, and threat\n" +
		"indicators. Findings warn; responses are never blocked.",
	RunE: runIncoming,
}

func runIncoming(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	h, err := buildShield()
	if err != nil {
		return err
	}

	r := h.ProcessIncoming(text)

	if incomingFormat == "json" {
		return printJSON(r)
	}

	if r.Action.Kind == shield.KindWarn {
		fmt.Printf("WARN: %s\n", r.Action.Reason)
	} else {
		fmt.Println("CLEAN")
	}
	return nil
}
