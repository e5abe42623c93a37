// Package main provides the deep-dream CLI.
package main

import (
	"fmt"
	"os"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("deep-dream %s\n", version)
		return
	}

	fmt.Println("deep-dream - Multiscale Gradient-Ascent Image Synthesis for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("See examples/dream for running a dream over an image.")
}
