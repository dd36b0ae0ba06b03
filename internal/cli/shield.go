package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hiveshield/hiveshield/internal/config"
	"github.com/hiveshield/hiveshield/internal/shield"
)

// buildShield loads the config and constructs the pipeline.
func buildShield() (*shield.HiveShield, error) {
	f, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := f.Shield()
	if err != nil {
		return nil, err
	}
	return shield.New(cfg)
}

// readInput returns the joined args, or stdin when no args are given.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
