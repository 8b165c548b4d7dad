package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/scriptsync/internal/engine"
	"github.com/rcliao/scriptsync/internal/markdown"
)

func init() {
	cmd := &cobra.Command{
		Use:   "targets [doc]",
		Short: "List the headings and table rows that can be linked",
		Args:  cobra.MaximumNArgs(1),
		Run:   runTargets,
	}

	RootCmd.AddCommand(cmd)
}

func runTargets(cmd *cobra.Command, args []string) {
	_, text, err := readDoc(docArg(args))
	if err != nil {
		exitErr("read document", err)
	}
	printJSON(engine.Targets(markdown.Parse(text)))
}
