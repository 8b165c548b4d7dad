package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "active",
		Short: "Show the fragments active at a playhead position",
		Run:   runActive,
	}

	cmd.Flags().Float64("at", -1, "Playhead position in seconds (default: the timeline's playhead)")
	cmd.Flags().Bool("stopped", false, "Evaluate as if playback were stopped")

	RootCmd.AddCommand(cmd)
}

func runActive(cmd *cobra.Command, args []string) {
	at, _ := cmd.Flags().GetFloat64("at")
	stopped, _ := cmd.Flags().GetBool("stopped")

	ws := mustWorkspace(docFlag)
	pos, _ := ws.Host.Transport()
	if at >= 0 {
		pos = at
	}

	printJSON(map[string]any{
		"playhead": pos,
		"active":   ws.Eng.ActiveFragments(pos, !stopped),
	})
}
