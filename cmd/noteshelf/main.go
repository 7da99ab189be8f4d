package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/marcus/noteshelf/internal/note"
)

// Version is set at build time via ldflags
var Version = ""

// exitAuth is the status used when the store rejects our credentials.
const exitAuth = 2

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, note.ErrAuth) {
			os.Exit(exitAuth)
		}
		os.Exit(1)
	}
}
