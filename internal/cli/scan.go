package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hiveshield/hiveshield/internal/config"
	"github.com/hiveshield/hiveshield/internal/model"
	"github.com/hiveshield/hiveshield/internal/secrets"
)

var scanFormat string

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "text", "Output format (text|json)")
}

var scanCmd = &cobra.Command{
	Use:   "scan [file...]",
	Short: "Scan files or stdin for leaked secrets",
	Long: "Runs the secret scanner standalone over the given files, or stdin\n" +
		"when no files are listed. Matches are masked; the raw secret is\n" +
		"never printed.\n\n" +
		"Exit code 0 when clean, 1 when any secret is found.",
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	f, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg, err := f.Shield()
	if err != nil {
		return err
	}
	scanner, err := secrets.NewScanner(cfg.SecretPatterns...)
	if err != nil {
		return err
	}

	var matches []secrets.Match
	files := 0

	if len(args) == 0 {
		text, err := readInput(nil)
		if err != nil {
			return err
		}
		matches = scanner.ScanTextWithContext(text, "stdin")
		files = 1
	} else {
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			matches = append(matches, scanner.ScanTextWithContext(string(data), path)...)
			files++
		}
	}

	result := secrets.Result{
		Matches:      matches,
		FilesScanned: files,
		Risk:         scanner.RiskLevel(matches),
	}

	if scanFormat == "json" {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		printScanText(result)
	}

	if len(matches) > 0 {
		os.Exit(1)
	}
	return nil
}

func printScanText(r secrets.Result) {
	if len(r.Matches) == 0 {
		fmt.Printf("clean: %d file(s) scanned\n", r.FilesScanned)
		return
	}
	for _, m := range r.Matches {
		fmt.Printf("%s:%d  %s  %s\n", m.Location, m.Line, m.Type, m.Value)
	}
	fmt.Printf("\n%d secret(s) in %d file(s), risk %s\n", len(r.Matches), r.FilesScanned, r.Risk)
	if r.Risk >= model.RiskHigh {
		fmt.Println("rotate the affected credentials before committing")
	}
}
