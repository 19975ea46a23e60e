// Package main provides the entry point for the GitHub wiki exporter.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wiki_exporter",
	Short: "GitHub Wiki Exporter",
	Long:  "Wiki Exporter downloads a GitHub repository's wiki and publishes it as Markdown, PDF and EPUB, via REST API or one-shot CLI runs.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
