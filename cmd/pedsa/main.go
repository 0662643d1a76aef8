// Command pedsa is the CLI front end for the PEDSA associative-memory
// engine: ingest features/events, compile indexes, retrieve, persist,
// and inspect store statistics.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
