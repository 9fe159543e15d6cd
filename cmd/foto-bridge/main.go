// Command foto-bridge serves the foto bridge over stdin/stdout and offers
// one-shot helpers for icons, dates and image transforms.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
