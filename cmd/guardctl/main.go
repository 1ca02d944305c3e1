package main

import (
	"fmt"
	"os"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "guardctl: %v\n", err)
		os.Exit(1)
	}

	root := newRootCommand(cfg)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "guardctl: %v\n", err)
		os.Exit(1)
	}
}
