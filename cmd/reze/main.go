// Command reze is a terminal client for the Reze relay server.
//
// Usage:
//
//	reze signup -u alice
//	reze login -u alice
//	reze settings set --openrouter-api-key sk-...
//	reze chat --research "what changed in Go 1.24?"
//	reze chat            (interactive)
//	reze logout
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
