// Command palletd serves the pallet runtime over gRPC and runs
// end-to-end demonstrations of it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
