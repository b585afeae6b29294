package main

import (
	"os"

	"github.com/wonny/lagcorr/cmd/lagcorr/commands"
)

// main is the entry point for the lagcorr CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/lagcorr [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
