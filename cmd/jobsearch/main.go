// Package main provides the jobsearch command-line client.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "jobsearch",
	Short:         "Search remote job listings from the terminal",
	Long:          "jobsearch queries the job-listing API with caching and debounced search, and keeps bookmarks in a local file, Redis, or Postgres.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath   string
	verbose      bool
	apiURL       string
	storeBackend string
	storePath    string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and cache activity")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Job API base URL")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Bookmark storage: file, redis, postgres, or memory")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "Bookmark file for the file store")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
