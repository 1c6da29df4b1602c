package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/acopio/formflow/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a schema document for consistency",
	Long:  `Checks instruction ids, condition types, start resolution and cycle freedom, and reports the first problem found.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Schema is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	if len(args) > 0 {
		path = args[0]
	}

	doc, err := cli.LoadDocument(path)
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	fmt.Printf("%d instructions, start at %q\n", len(doc.Instructions), doc.InstructionStart)
	return nil
}
