package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list [doc]",
		Short: "List the fragments linked in a document",
		Args:  cobra.MaximumNArgs(1),
		Run:   runList,
	}

	cmd.Flags().Bool("lines-only", false, "Only output line ranges and identifiers")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	linesOnly, _ := cmd.Flags().GetBool("lines-only")

	ws := mustWorkspace(docArg(args))
	frags := ws.Eng.Fragments()

	if linesOnly {
		for _, f := range frags {
			fmt.Printf("%d-%d\t%s\t%s\n", f.LineStart, f.LineEnd, f.Identifier, strings.Join(f.MediaIDs, ","))
		}
		return
	}

	printJSON(map[string]any{
		"doc":       ws.DocPath,
		"stale":     ws.Eng.Stale(),
		"fragments": frags,
	})
}
