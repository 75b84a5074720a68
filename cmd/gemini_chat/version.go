package main

import (
	"fmt"

	"gemini_chat/pkg/version"
)

func printVersion() {
	fmt.Printf("gemini_chat version %s\n", version.Version)
	fmt.Printf("  commit: %s\n", version.Commit)
	fmt.Printf("  built: %s\n", version.Date)
	fmt.Printf("  go: %s\n", version.GoVersion)
	fmt.Printf("  platform: %s\n", version.Platform())
}
