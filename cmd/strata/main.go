// File: cmd/strata/main.go
package main

import (
	"os"

	// Explicitly import provider implementations to ensure their init() functions run and they register themselves
	_ "strata/pkg/storage/gcp"
	_ "strata/pkg/storage/s3compat"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
