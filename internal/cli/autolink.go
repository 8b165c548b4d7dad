package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "autolink",
		Short: "Link headings to timeline regions with matching names",
		Run:   runAutolink,
	}

	cmd.Flags().Int("min-length", -1, "Shortest region name allowed to match by substring (default from config)")
	cmd.Flags().Bool("dry-run", false, "Report matches without saving")

	RootCmd.AddCommand(cmd)
}

func runAutolink(cmd *cobra.Command, args []string) {
	minLen, _ := cmd.Flags().GetInt("min-length")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if minLen >= 0 {
		cfg.AutoLinkMinLength = minLen
	}

	ws := mustWorkspace(docFlag)
	n := ws.Eng.AutoLinkHeadings(ws.Doc)
	if !dryRun {
		ws.save()
	}

	printJSON(map[string]any{"ok": true, "linked": n, "fragments": ws.Eng.Fragments()})
}
