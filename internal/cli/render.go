package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/scriptsync/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "render [doc]",
		Short: "Draw the document with link marks in the gutter",
		Args:  cobra.MaximumNArgs(1),
		Run:   runRender,
	}

	cmd.Flags().Float64("at", -1, "Highlight fragments active at this playhead position")
	cmd.Flags().IntP("width", "w", 0, "Wrap paragraphs at this width")

	RootCmd.AddCommand(cmd)
}

func runRender(cmd *cobra.Command, args []string) {
	at, _ := cmd.Flags().GetFloat64("at")
	width, _ := cmd.Flags().GetInt("width")

	ws := mustWorkspace(docArg(args))
	r := render.New(render.WithOutput(os.Stdout), render.WithWidth(width))
	r.SetFragments(ws.Eng.Fragments())
	if at >= 0 {
		r.SetActive(ws.Eng.ActiveFragments(at, true))
	}
	fmt.Println(r.Render(ws.Doc))
}
