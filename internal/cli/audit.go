package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hiveshield/hiveshield/internal/audit"
)

var auditFormat string

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditVerifyCmd.Flags().StringVarP(&auditFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the shield decision log",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <log-path>",
	Short: "Verify the hash chain of a decision log",
	Long: "Walks a JSONL decision log and checks that every entry's prev_hash\n" +
		"matches the hash of the previous line.\n\n" +
		"Exit code 0 when the chain is intact, 1 when broken.",
	Args: cobra.ExactArgs(1),
	RunE: runAuditVerify,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(args[0])

	if auditFormat == "json" {
		if err := printJSON(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Printf("chain intact: %d entries\n", result.Lines)
	} else {
		fmt.Printf("chain broken at line %d: %s\n", result.ErrorLine, result.Error)
	}

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}
