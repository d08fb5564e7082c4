// Command g3planner is the planning-mode orchestrator's entry point.
package main

import (
	"fmt"
	"os"

	"github.com/forgeplan/g3planner/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
