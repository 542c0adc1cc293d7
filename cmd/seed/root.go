package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Questionnaire and token tooling for the diagnostic API",
	Long:  "seed imports the PBQP-H SiAC questionnaire into the configured store and signs local user tokens.",
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(tokenCmd)
}
