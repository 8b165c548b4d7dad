package engine

import (
	"sort"

	"github.com/rcliao/scriptsync/internal/markdown"
	"github.com/rcliao/scriptsync/internal/model"
)

// Targets lists every linkable span in doc: heading sections and table body
// rows. Rows are identified by their first cell; RowIndex tells apart rows
// that share an identifier.
func Targets(doc *markdown.Document) []Target {
	var out []Target
	for _, s := range markdown.Sections(doc) {
		out = append(out, Target{
			LineStart:  s.StartLine,
			LineEnd:    s.EndLine,
			Identifier: s.Title,
			NodeType:   model.NodeHeading,
		})
	}

	seen := map[string]int{}
	markdown.Walk(doc, func(n markdown.Node) bool {
		row, ok := n.(*markdown.TableRow)
		if !ok {
			return true
		}
		if row.Header || len(row.Cells) == 0 {
			return false
		}
		id := markdown.PlainText(row.Cells[0])
		out = append(out, Target{
			LineStart:  row.LineStart,
			LineEnd:    row.LineEnd,
			Identifier: id,
			NodeType:   model.NodeTableRow,
			RowIndex:   seen[id],
		})
		seen[id]++
		return false
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].LineStart < out[j].LineStart })
	return out
}

// TargetAt returns the target for line: a table row on that exact line wins
// over the heading section around it.
func TargetAt(doc *markdown.Document, line int) (Target, bool) {
	var section *Target
	for _, t := range Targets(doc) {
		switch {
		case t.NodeType == model.NodeTableRow && t.LineStart == line:
			return t, true
		case t.NodeType == model.NodeHeading && line >= t.LineStart && line <= t.LineEnd:
			section = &t
		}
	}
	if section != nil {
		return *section, true
	}
	return Target{}, false
}
