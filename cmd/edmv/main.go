package main

import (
	"fmt"
	"os"

	"github.com/sokinpui/edmv"
)

func main() {
	if err := edmv.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
