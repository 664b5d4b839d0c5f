package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bruinnotes/bruin/internal/ui"
)

// graphCmd walks the wiki-link edges between notes. With a center note
// given, it expands outward breadth-first up to --depth hops or --max
// nodes, whichever limit is hit first; with no center, it walks the
// whole graph from every edge endpoint.
var graphCmd = &cobra.Command{
	Use:   "graph [note-id]",
	Short: "Show the wiki-link graph around a note, or the whole vault",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var center string
		if len(args) == 1 {
			center = args[0]
		}
		depth, _ := cmd.Flags().GetInt("depth")
		maxNodes, _ := cmd.Flags().GetInt("max")

		g, err := app.Catalog.KnowledgeGraphBFS(rootCtx, center, depth, maxNodes)
		if err != nil {
			return err
		}
		if app.JSONOutput {
			outputJSON(g)
			return nil
		}
		if len(g.Nodes) == 0 {
			fmt.Println("no linked notes found")
			return nil
		}
		for _, n := range g.Nodes {
			tags := ""
			if len(n.Tags) > 0 {
				tags = fmt.Sprintf(" %v", n.Tags)
			}
			fmt.Printf("%-12s depth=%d degree=%-3d%s\n", ui.RenderAccent(n.NoteID), n.Depth, n.Degree, ui.RenderMuted(tags))
		}
		fmt.Println()
		for _, e := range g.Edges {
			fmt.Printf("  %s --%s--> %s\n", e.Source, ui.RenderMuted(e.Kind), e.Target)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().Int("depth", 2, "maximum hops from the center note")
	graphCmd.Flags().Int("max", 100, "maximum number of nodes to return")
	rootCmd.AddCommand(graphCmd)
}
