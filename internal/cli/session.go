package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/scriptsync/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Keep fragment maps per project session in the session database",
}

func init() {
	saveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Store the document's current mapping as a new session version",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionSave,
	}

	loadCmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Restore a stored session into the document's mapping",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionLoad,
	}
	loadCmd.Flags().Int("version", 0, "Specific version (default: latest)")
	loadCmd.Flags().Bool("history", false, "Print every version instead of restoring")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		Run:   runSessionList,
	}
	listCmd.Flags().IntP("limit", "l", 20, "Max results")
	listCmd.Flags().Bool("all-docs", false, "Include sessions of every document")

	rmCmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionRm,
	}
	rmCmd.Flags().Bool("all-versions", false, "Delete all versions")
	rmCmd.Flags().Bool("hard", false, "Permanent delete (irreversible)")

	sessionCmd.AddCommand(saveCmd, loadCmd, listCmd, rmCmd)
	RootCmd.AddCommand(sessionCmd)
}

func runSessionSave(cmd *cobra.Command, args []string) {
	ws := mustWorkspace(docFlag)

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := s.Save(cmd.Context(), store.SaveParams{Session: args[0], Map: ws.Eng.Map()})
	if err != nil {
		exitErr("save session", err)
	}
	sess.Map = nil
	printJSON(sess)
}

func runSessionLoad(cmd *cobra.Command, args []string) {
	version, _ := cmd.Flags().GetInt("version")
	history, _ := cmd.Flags().GetBool("history")

	ws := mustWorkspace(docFlag)

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sessions, err := s.Load(cmd.Context(), store.LoadParams{
		Session: args[0],
		DocPath: ws.DocPath,
		History: history,
		Version: version,
	})
	switch {
	case errors.Is(err, store.ErrPathMismatch):
		exitErr("load session", fmt.Errorf("%q was saved for another document: %w", args[0], err))
	case err != nil:
		exitErr("load session", err)
	}

	if history {
		printJSON(sessions)
		return
	}

	ws.Eng.Restore(sessions[0].Map)
	ws.save()
	printJSON(map[string]any{
		"ok":        true,
		"session":   args[0],
		"version":   sessions[0].Version,
		"fragments": len(ws.Eng.Fragments()),
		"stale":     ws.Eng.Stale(),
	})
}

func runSessionList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	allDocs, _ := cmd.Flags().GetBool("all-docs")

	var doc string
	if !allDocs && docFlag != "" {
		abs, _, err := readDoc(docFlag)
		if err != nil {
			exitErr("read document", err)
		}
		doc = abs
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sessions, err := s.List(cmd.Context(), store.ListParams{DocPath: doc, Limit: limit})
	if err != nil {
		exitErr("list sessions", err)
	}
	printJSON(sessions)
}

func runSessionRm(cmd *cobra.Command, args []string) {
	allVersions, _ := cmd.Flags().GetBool("all-versions")
	hard, _ := cmd.Flags().GetBool("hard")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	err = s.Rm(cmd.Context(), store.RmParams{
		Session:     args[0],
		AllVersions: allVersions,
		Hard:        hard,
	})
	if err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"session":%q}`+"\n", args[0])
}
