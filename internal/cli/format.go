package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/scriptsync/internal/assist"
	"github.com/rcliao/scriptsync/internal/logging"
)

func init() {
	cmd := &cobra.Command{
		Use:   "format <line-start> <line-end>",
		Short: "Reformat a line range with the configured assist backend",
		Args:  cobra.ExactArgs(2),
		Run:   runFormat,
	}

	cmd.Flags().StringP("instruction", "i", assist.DefaultInstruction, "Instruction sent with the text")
	cmd.Flags().Bool("write", false, "Write the result back into the document")
	cmd.Flags().Duration("timeout", 2*time.Minute, "Give up after this long")

	RootCmd.AddCommand(cmd)
}

func runFormat(cmd *cobra.Command, args []string) {
	instruction, _ := cmd.Flags().GetString("instruction")
	write, _ := cmd.Flags().GetBool("write")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	start, end := parseLine(args[0]), parseLine(args[1])
	if end < start {
		exitErr("format", fmt.Errorf("line range %d-%d is empty", start, end))
	}

	f := assist.New(cfg.Assist.Provider, cfg.Assist.Model, cfg.Assist.URL, cfg.Assist.APIKey)
	if f == nil {
		exitErr("format", fmt.Errorf("no assist provider configured (set assist.provider)"))
	}

	ws := mustWorkspace(docFlag)
	lines := strings.Split(ws.Text, "\n")
	if end > len(lines) {
		exitErr("format", fmt.Errorf("document has only %d lines", len(lines)))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	inbox := assist.NewInbox(f, logging.Component("assist"))
	inbox.Submit(ctx, assist.Request{
		LineStart:   start,
		LineEnd:     end,
		Text:        strings.Join(lines[start-1:end], "\n"),
		Instruction: instruction,
	})

	// Results are collected from this loop, the document's owner.
	interval := max(cfg.ThrottleInterval, 10*time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var results []assist.Result
	for len(results) == 0 {
		<-ticker.C
		results = inbox.Drain()
	}

	r := results[0]
	if r.Err != nil {
		exitErr("format", r.Err)
	}
	if !write {
		fmt.Println(r.Formatted)
		return
	}

	text, ok := assist.Apply(ws.Text, r)
	if !ok {
		exitErr("format", fmt.Errorf("lines %d-%d changed while formatting", start, end))
	}
	if err := os.WriteFile(ws.DocPath, []byte(text), 0o644); err != nil {
		exitErr("write document", err)
	}
	ws.Eng.SetDocument(ws.DocPath, text)
	printJSON(map[string]any{"ok": true, "formatter": f.Name(), "stale": ws.Eng.Stale()})
}
