// Command shadowtree diffs, renders and inspects shadow tree documents.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/shadow/cmd/shadowtree/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
