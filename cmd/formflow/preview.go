package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/acopio/formflow/internal/cli"
	"github.com/acopio/formflow/internal/presentation/tui"
	"github.com/acopio/formflow/internal/runtime"
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Walk a schema interactively in the terminal",
	Long:  `Starts a collection session over the schema and prompts for every field on the visible path, reshaping the path as answers come in.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("file")
		if len(args) > 0 {
			path = args[0]
		}
		debug, _ := cmd.Flags().GetBool("debug")

		doc, err := cli.LoadDocument(path)
		if err != nil {
			fmt.Printf("Error loading schema: %v\n", err)
			os.Exit(1)
		}
		if err := doc.Validate(); err != nil {
			fmt.Printf("Schema is not valid: %v\n", err)
			os.Exit(1)
		}

		// Pretty output only when stdout is an actual terminal.
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		if interactive {
			tui.PrintBanner()
		}

		engine := runtime.NewEngine(runtime.WithLogger(cli.CreateLogger(debug)))
		session := engine.Begin(path, doc)

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if err := cli.RunPreview(ctx, session, os.Stdin, os.Stdout, interactive); err != nil {
			if sig := ctx.Signal(); sig != nil {
				fmt.Printf("\nPreview interrupted (%v)\n", sig)
				return
			}
			fmt.Printf("Preview failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
