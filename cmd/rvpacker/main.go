package main

import (
	"errors"
	"fmt"
	"os"

	"rvpacker/internal/runner"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, runner.ErrAborted) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
