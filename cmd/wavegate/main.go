package main

import (
	"fmt"
	"os"

	"wavegate/cmd/wavegate/cmd"
	"wavegate/internal/config"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration warning: %v\n", err)
		// Continue execution; environment may be set system-wide.
	}

	cmd.Execute()
}
