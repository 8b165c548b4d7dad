package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/scriptsync/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "link <line> <media-id>...",
		Short: "Link the heading or table row at a line to media items",
		Long: "Link the fragment covering <line> to one or more media items. A table row on that " +
			"exact line is linked as a row; otherwise the enclosing heading section is used.",
		Args: cobra.MinimumNArgs(1),
		Run:  runLink,
	}

	cmd.Flags().BoolP("group", "g", false, "Link every member of each item's group")
	cmd.Flags().Int("region", 0, "Link a named region instead of (or as well as) media items")

	RootCmd.AddCommand(cmd)
}

func parseLine(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		exitErr("parse line", fmt.Errorf("invalid line number %q", s))
	}
	return n
}

func targetAt(ws *workspace, line int) engine.Target {
	t, ok := engine.TargetAt(ws.Doc, line)
	if !ok {
		exitErr("link", fmt.Errorf("line %d is not inside a heading section or table row", line))
	}
	return t
}

func runLink(cmd *cobra.Command, args []string) {
	group, _ := cmd.Flags().GetBool("group")
	region, _ := cmd.Flags().GetInt("region")
	line := parseLine(args[0])
	if len(args) < 2 && region <= 0 {
		exitErr("link", fmt.Errorf("nothing to link: give media ids or --region"))
	}

	ws := mustWorkspace(docFlag)
	t := targetAt(ws, line)

	added := 0
	for _, id := range args[1:] {
		if _, ok := ws.Eng.Snapshot().Item(id); !ok && timelineFlag != "" {
			exitErr("link", fmt.Errorf("media item %q not on the timeline", id))
		}
		if group {
			added += ws.Eng.LinkGroup(id, t)
		} else if ws.Eng.Link(id, t) {
			added++
		}
	}
	if region > 0 && ws.Eng.LinkRegion(region, t) {
		added++
	}
	ws.save()

	f, _ := ws.Eng.FindByLineStart(t.LineStart)
	printJSON(map[string]any{"ok": true, "added": added, "fragment": f})
}
