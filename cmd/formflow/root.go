package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formflow",
	Short: "Formflow is a dynamic form-flow engine for field data collection",
	Long:  `Formflow validates, visualizes, previews and serves instruction-graph form schemas.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "schema.yaml", "Path to the schema document")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}
