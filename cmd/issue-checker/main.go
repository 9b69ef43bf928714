// Package main is the entry point for the issue-checker CLI.
package main

import (
	"os"

	"github.com/MaaAssistantArknights/issue-checker/cmd/issue-checker/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
