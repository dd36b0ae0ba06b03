package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hiveshield/hiveshield/internal/pii"
)

var uncloakMapPath string

func init() {
	rootCmd.AddCommand(uncloakCmd)
	uncloakCmd.Flags().StringVarP(&uncloakMapPath, "map", "m", "", "Path to cloak map JSON from a previous check (required)")
	uncloakCmd.MarkFlagRequired("map")
}

var uncloakCmd = &cobra.Command{
	Use:   "uncloak [text]",
	Short: "Restore cloaked values in a provider response",
	Long: "Substitutes cloak tokens back to their original values using the\n" +
		"cloak map produced by a previous check. Purely textual: unknown\n" +
		"tokens pass through unchanged.",
	RunE: runUncloak,
}

func runUncloak(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(uncloakMapPath)
	if err != nil {
		return fmt.Errorf("read cloak map: %w", err)
	}
	var cloakMap map[string]string
	if err := json.Unmarshal(data, &cloakMap); err != nil {
		return fmt.Errorf("parse cloak map: %w", err)
	}

	fmt.Println(pii.Uncloak(text, cloakMap))
	return nil
}
