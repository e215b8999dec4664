// ABOUTME: Entry point for the duospend operational CLI
// ABOUTME: Delegates to the cobra command tree

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
