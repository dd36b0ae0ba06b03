// hiveshield — inspection shield between an AI agent application and
// external AI providers.
package main

import "github.com/hiveshield/hiveshield/internal/cli"

func main() {
	cli.Execute()
}
