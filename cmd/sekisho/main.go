package main

import (
	"github.com/shizukutanaka/Sekisho/cmd/sekisho/commands"
)

// Minimal entrypoint that delegates to the Cobra CLI defined in cmd/sekisho/commands.
func main() {
	commands.Execute()
}
