package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acopio/formflow/internal/cli"
	"github.com/acopio/formflow/internal/presentation/graph"
	"github.com/acopio/formflow/internal/runtime"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the schema graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the instruction graph. With --answer flags the visible path for those answers is highlighted.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("file")
		if len(args) > 0 {
			path = args[0]
		}

		doc, err := cli.LoadDocument(path)
		if err != nil {
			fmt.Printf("Error loading schema: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.Overlay
		answers, _ := cmd.Flags().GetStringArray("answer")
		if len(answers) > 0 {
			debug, _ := cmd.Flags().GetBool("debug")
			engine := runtime.NewEngine(runtime.WithLogger(cli.CreateLogger(debug)))
			session := engine.Begin("graph", doc)
			for _, pair := range answers {
				name, value, ok := strings.Cut(pair, "=")
				if !ok {
					fmt.Printf("Invalid --answer %q, expected name=value\n", pair)
					os.Exit(1)
				}
				session.SetValue(cmd.Context(), name, value)
			}
			overlay = &graph.Overlay{Visible: session.VisibleSet()}
		}

		fmt.Print(graph.GenerateMermaid(doc, overlay))
	},
}

func init() {
	graphCmd.Flags().StringArray("answer", nil, "Answer as name=value, may repeat; highlights the visible path")
	rootCmd.AddCommand(graphCmd)
}
