package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "unlink <line> [media-id]...",
		Short: "Remove media links from the fragment covering a line",
		Args:  cobra.MinimumNArgs(1),
		Run:   runUnlink,
	}

	cmd.Flags().Bool("all", false, "Remove the whole fragment")
	cmd.Flags().BoolP("group", "g", false, "Remove every member of each item's group")

	RootCmd.AddCommand(cmd)
}

func runUnlink(cmd *cobra.Command, args []string) {
	all, _ := cmd.Flags().GetBool("all")
	group, _ := cmd.Flags().GetBool("group")
	line := parseLine(args[0])
	if !all && len(args) < 2 {
		exitErr("unlink", fmt.Errorf("give media ids or --all"))
	}

	ws := mustWorkspace(docFlag)
	f, ok := ws.Eng.FindContainingLine(line)
	if !ok {
		exitErr("unlink", fmt.Errorf("no fragment covers line %d", line))
	}

	removed := 0
	switch {
	case all:
		if ws.Eng.UnlinkAll(f.LineStart) {
			removed = len(f.MediaIDs)
		}
	default:
		for _, id := range args[1:] {
			if group {
				removed += ws.Eng.UnlinkGroup(f.LineStart, id)
			} else if ws.Eng.UnlinkOne(f.LineStart, id) {
				removed++
			}
		}
	}
	ws.save()

	printJSON(map[string]any{"ok": true, "line_start": f.LineStart, "removed": removed})
}
