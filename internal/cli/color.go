package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "color <line>",
		Short: "Cycle the colour category of the fragment covering a line",
		Long:  "Cycle voice → music → effect → other → voice. An unset category moves to music.",
		Args:  cobra.ExactArgs(1),
		Run:   runColor,
	}

	RootCmd.AddCommand(cmd)
}

func runColor(cmd *cobra.Command, args []string) {
	line := parseLine(args[0])

	ws := mustWorkspace(docFlag)
	f, ok := ws.Eng.FindContainingLine(line)
	if !ok {
		exitErr("color", fmt.Errorf("no fragment covers line %d", line))
	}
	c, _ := ws.Eng.CycleColorCategory(f.LineStart)
	ws.save()

	printJSON(map[string]any{"ok": true, "line_start": f.LineStart, "category": c.String()})
}
