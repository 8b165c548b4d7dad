package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/scriptsync/internal/markdown"
)

func init() {
	cmd := &cobra.Command{
		Use:   "parse [doc]",
		Short: "Print the syntax tree of a markdown document as JSON",
		Args:  cobra.MaximumNArgs(1),
		Run:   runParse,
	}

	cmd.Flags().Bool("sections", false, "Print heading sections instead of the full tree")

	RootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) {
	sections, _ := cmd.Flags().GetBool("sections")

	_, text, err := readDoc(docArg(args))
	if err != nil {
		exitErr("read document", err)
	}
	doc := markdown.Parse(text)

	if sections {
		out := []map[string]any{}
		for _, s := range markdown.Sections(doc) {
			out = append(out, map[string]any{
				"title":      s.Title,
				"level":      s.Heading.Level,
				"line_start": s.StartLine,
				"line_end":   s.EndLine,
			})
		}
		printJSON(out)
		return
	}
	printJSON(markdown.ToMap(doc))
}
