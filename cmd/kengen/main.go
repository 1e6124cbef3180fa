// Command kengen runs a headless demo world on the kengen ECS: entities drift across the plane,
// expire, and are respawned, while line-based keys on stdin drive the game loop.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
