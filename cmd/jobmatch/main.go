// Package main implements the jobmatch server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/jobmatch/internal/config"
)

var envFlag string

var rootCmd = &cobra.Command{
	Use:           "jobmatch",
	Short:         "Candidate-to-job matching and ranking engine",
	Long:          "Retrieves postings similar to a candidate's skills, re-ranks them with a generative judge and reports salary trends and keywords.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", config.GetEnv(), "Config environment (config/<env>.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
