package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/acopio/formflow/internal/cli"
	"github.com/acopio/formflow/internal/editor"
)

// layoutCmd represents the layout command
var layoutCmd = &cobra.Command{
	Use:   "layout [file]",
	Short: "Recompute canvas positions for a schema",
	Long:  `Runs the automatic layout over the instruction graph and writes the new x/y coordinates back to the schema file.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("file")
		if len(args) > 0 {
			path = args[0]
		}
		write, _ := cmd.Flags().GetBool("write")
		debug, _ := cmd.Flags().GetBool("debug")

		doc, err := cli.LoadDocument(path)
		if err != nil {
			fmt.Printf("Error loading schema: %v\n", err)
			os.Exit(1)
		}

		g := editor.NewGraph(doc, editor.WithLogger(cli.CreateLogger(debug)))
		result := g.AutoLayout(editor.DefaultLayoutConfig())
		if len(result.Positions) == 0 {
			fmt.Println("Layout skipped: the graph has no resolvable start")
			os.Exit(1)
		}

		for _, node := range g.Nodes() {
			fmt.Printf("%-24s x=%-8.0f y=%.0f\n", node.ID, node.Position.X, node.Position.Y)
		}

		if write {
			if err := cli.SaveDocument(path, g.Document()); err != nil {
				fmt.Printf("Error writing schema: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Positions written to %s\n", path)
		}
	},
}

func init() {
	layoutCmd.Flags().Bool("write", false, "Write the computed positions back to the schema file")
	rootCmd.AddCommand(layoutCmd)
}
