package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sessions as JSON",
		Long:  "Export every live session version with its fragments. Limit to one document with --doc.",
		Run:   runExport,
	}

	sessionCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	var doc string
	if docFlag != "" {
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

	sessions, err := s.ExportAll(cmd.Context(), doc)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(sessions)
}
