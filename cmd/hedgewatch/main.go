package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/hedgewatch/internal/cli"
	"github.com/ppiankov/hedgewatch/internal/patterns"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, patterns.ErrNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
