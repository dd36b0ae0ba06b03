package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hiveshield/hiveshield/internal/shield"
)

var (
	checkDestination string
	checkFormat      string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkDestination, "dest", "d", "", "Destination identifier, e.g. openai (required)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	checkCmd.MarkFlagRequired("dest")
}

var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Inspect an outgoing message before it reaches a provider",
	Long: "Runs the full pipeline over a message bound for a destination:\n" +
		"secret scan, threat assessment, PII detection, access policy.\n\n" +
		"Reads text from arguments or stdin. Exit code 0 for allow, warn,\n" +
		"or cloak-and-allow; 1 for block. Use in a wrapper to gate traffic.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	h, err := buildShield()
	if err != nil {
		return err
	}

	r := h.ProcessOutgoing(text, checkDestination)

	switch checkFormat {
	case "json":
		if err := printJSON(r); err != nil {
			return err
		}
	default:
		printOutgoingText(r, text)
	}

	if r.Action.Kind == shield.KindBlock {
		os.Exit(1)
	}
	return nil
}

func printOutgoingText(r shield.Result, original string) {
	switch r.Action.Kind {
	case shield.KindBlock:
		fmt.Printf("BLOCK: %s\n", r.Action.Reason)
	case shield.KindWarn:
		fmt.Printf("WARN: %s\n", r.Action.Reason)
		fmt.Println(original)
	case shield.KindCloakAndAllow:
		fmt.Printf("CLOAKED: %d value(s) replaced\n", len(r.Action.Cloaked.Matches))
		fmt.Println(r.Action.Cloaked.Text)
	default:
		fmt.Println("ALLOW")
	}
}
