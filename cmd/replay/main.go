// Command replay plays recorded landmark sessions through the smoothing
// pipeline and hands batches to storage, websocket clients or the terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
