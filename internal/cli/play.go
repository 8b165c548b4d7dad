package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/scriptsync/internal/engine"
	"github.com/rcliao/scriptsync/internal/logging"
	"github.com/rcliao/scriptsync/internal/teleprompter"
)

func init() {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Simulate playback and print teleprompter frames",
		Long: "Step a simulated playhead across the timeline and print one JSON frame per change: " +
			"the voice lines to read, other active lines and the countdown to the next voice line.",
		Run: runPlay,
	}

	cmd.Flags().Float64("from", 0, "Start position in seconds")
	cmd.Flags().Float64("to", -1, "End position in seconds (default: end of the last item)")
	cmd.Flags().Float64("step", 0.1, "Playhead step in seconds")
	cmd.Flags().Bool("every", false, "Print every step, not only changes")
	cmd.Flags().Bool("realtime", false, "Sleep between steps")

	RootCmd.AddCommand(cmd)
}

type playFrame struct {
	Playhead float64 `json:"playhead"`
	teleprompter.Frame
}

func runPlay(cmd *cobra.Command, args []string) {
	from, _ := cmd.Flags().GetFloat64("from")
	to, _ := cmd.Flags().GetFloat64("to")
	step, _ := cmd.Flags().GetFloat64("step")
	every, _ := cmd.Flags().GetBool("every")
	realtime, _ := cmd.Flags().GetBool("realtime")
	if step <= 0 {
		exitErr("play", fmt.Errorf("step must be positive"))
	}

	// Playback runs on a simulated clock so throttling and hold behave as
	// they would in real time, without waiting.
	clock := time.Unix(0, 0)
	now := func() time.Time { return clock }

	ws := mustWorkspace(docFlag, engine.WithClock(now))
	if to < 0 {
		for _, m := range ws.Host.Items() {
			to = max(to, m.Interval().End)
		}
		for _, r := range ws.Host.Regions() {
			to = max(to, r.End)
		}
	}

	p := teleprompter.New(ws.Eng,
		teleprompter.WithClock(now),
		teleprompter.WithHold(cfg.HoldDuration),
		teleprompter.WithLogger(logging.Component("teleprompter")),
	)

	enc := json.NewEncoder(os.Stdout)
	tick := time.Duration(step * float64(time.Second))
	var last []int
	for pos := from; pos <= to+1e-9; pos += step {
		fr := p.Update(pos, true)
		lines := frameLines(fr)
		if every || !slices.Equal(lines, last) {
			if err := enc.Encode(playFrame{Playhead: pos, Frame: fr}); err != nil {
				exitErr("write frame", err)
			}
			last = lines
		}
		clock = clock.Add(tick)
		if realtime {
			time.Sleep(tick)
		}
	}
}

func frameLines(fr teleprompter.Frame) []int {
	var out []int
	for _, f := range fr.Primary {
		out = append(out, f.LineStart)
	}
	out = append(out, -1)
	for _, f := range fr.Secondary {
		out = append(out, f.LineStart)
	}
	return out
}
