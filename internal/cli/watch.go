package cli

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcliao/scriptsync/internal/engine"
	"github.com/rcliao/scriptsync/internal/logging"
	"github.com/rcliao/scriptsync/internal/watch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch [doc]",
		Short: "Re-parse the document whenever it changes",
		Long: "Watch the document and print a JSON line per change with the number of linkable " +
			"targets and whether the stored mapping still matches the content.",
		Args: cobra.MaximumNArgs(1),
		Run:  runWatch,
	}

	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before a change is reported")

	RootCmd.AddCommand(cmd)
}

type watchEvent struct {
	Kind      string `json:"kind"`
	File      string `json:"file"`
	Targets   int    `json:"targets"`
	Fragments int    `json:"fragments"`
	Stale     bool   `json:"stale"`
}

func runWatch(cmd *cobra.Command, args []string) {
	debounce, _ := cmd.Flags().GetDuration("debounce")

	ws := mustWorkspace(docArg(args))
	w, err := watch.NewWatcher(ws.DocPath, logging.Component("watch"))
	if err != nil {
		exitErr("watch", err)
	}
	w.Debounce = debounce
	if err := w.Start(); err != nil {
		exitErr("watch", err)
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-w.Changes:
			if !ok {
				return
			}
			ev := watchEvent{Kind: c.Kind.String(), File: c.File}
			if c.Kind == watch.ChangeModified {
				ws.Eng.SetDocument(ws.DocPath, c.Text)
				ws.Doc = c.Doc
				ws.Text = c.Text
				ev.Targets = len(engine.Targets(c.Doc))
				ev.Stale = ws.Eng.Stale()
			}
			ev.Fragments = len(ws.Eng.Fragments())
			if err := enc.Encode(ev); err != nil {
				exitErr("write event", err)
			}
		}
	}
}
