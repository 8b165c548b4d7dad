// Package render draws a parsed script to the terminal. Linked fragments get
// a coloured gutter mark and active fragments are highlighted.
//
// The renderer never modifies the tree. Everything it learns while drawing
// lives in side tables keyed by source line.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/scriptsync/internal/markdown"
	"github.com/rcliao/scriptsync/internal/model"
)

// Renderer turns a Document into styled text.
type Renderer struct {
	st    styles
	r     *lipgloss.Renderer
	width int

	// Side tables, keyed by line_start.
	linked map[int]model.Category
	active map[int]bool
	rows   map[int]int

	out []string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithOutput selects the terminal whose colour profile is used.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) { r.r = lipgloss.NewRenderer(w) }
}

// WithWidth wraps paragraphs at n columns. Zero disables wrapping.
func WithWidth(n int) Option { return func(r *Renderer) { r.width = n } }

// New creates a renderer writing for stdout by default.
func New(opts ...Option) *Renderer {
	r := &Renderer{r: lipgloss.NewRenderer(os.Stdout)}
	for _, o := range opts {
		o(r)
	}
	r.st = newStyles(r.r)
	return r
}

// SetFragments records which lines carry links and their categories.
func (r *Renderer) SetFragments(frags []model.Fragment) {
	r.linked = make(map[int]model.Category, len(frags))
	for _, f := range frags {
		for l := f.LineStart; l <= f.LineEnd; l++ {
			if _, ok := r.linked[l]; !ok || l == f.LineStart {
				r.linked[l] = f.Category
			}
		}
	}
}

// SetActive marks the fragments to highlight.
func (r *Renderer) SetActive(frags []model.Fragment) {
	r.active = make(map[int]bool)
	for _, f := range frags {
		for l := f.LineStart; l <= f.LineEnd; l++ {
			r.active[l] = true
		}
	}
}

// Row returns the output row on which the block starting at line was drawn
// by the last Render call.
func (r *Renderer) Row(line int) (int, bool) {
	row, ok := r.rows[line]
	return row, ok
}

// Render draws doc.
func (r *Renderer) Render(doc *markdown.Document) string {
	r.out = r.out[:0]
	r.rows = make(map[int]int)
	for i, b := range doc.Children {
		if i > 0 {
			r.out = append(r.out, "")
		}
		r.block(b, "")
	}
	return strings.Join(r.out, "\n")
}

func (r *Renderer) emit(line int, prefix, text string) {
	if _, seen := r.rows[line]; !seen {
		r.rows[line] = len(r.out)
	}
	r.out = append(r.out, r.gutter(line)+prefix+text)
}

func (r *Renderer) gutter(line int) string {
	if r.active[line] {
		return r.st.active.Render(markActive) + " "
	}
	if c, ok := r.linked[line]; ok {
		return r.r.NewStyle().Foreground(categoryColor(c)).Render(markLinked) + " "
	}
	return markNone + " "
}

func (r *Renderer) block(n markdown.Node, prefix string) {
	switch n := n.(type) {
	case *markdown.Heading:
		text := strings.Repeat("#", n.Level) + " " + r.inlines(n.Children)
		style := r.st.heading
		if r.active[n.LineStart] {
			style = r.st.active
		}
		r.emit(n.LineStart, prefix, style.Render(text))

	case *markdown.Paragraph:
		text := r.inlines(n.Children)
		if r.active[n.LineStart] {
			text = r.st.active.Render(text)
		}
		if r.width > 0 {
			text = r.r.NewStyle().Width(r.width - lipgloss.Width(prefix) - 2).Render(text)
		}
		for _, l := range strings.Split(text, "\n") {
			r.emit(n.LineStart, prefix, l)
		}

	case *markdown.CodeBlock:
		if n.Lang != "" {
			r.emit(n.LineStart, prefix, r.st.rule.Render(n.Lang))
		}
		for i, l := range strings.Split(n.Value, "\n") {
			r.emit(n.LineStart+1+i, prefix, r.st.codeBlock.Render(l))
		}

	case *markdown.ListUnordered:
		for _, it := range n.Items {
			r.listItem(it, prefix, "• ")
		}

	case *markdown.ListOrdered:
		for _, it := range n.Items {
			r.listItem(it, prefix, fmt.Sprintf("%d. ", it.Number))
		}

	case *markdown.Blockquote:
		bar := r.st.quoteBar.Render("│") + " "
		for i, c := range n.Children {
			if i > 0 {
				ls, _ := c.Lines()
				r.out = append(r.out, r.gutter(ls)+prefix+bar)
			}
			r.block(c, prefix+bar)
		}

	case *markdown.HorizontalRule:
		r.emit(n.LineStart, prefix, r.st.rule.Render(strings.Repeat("─", 24)))

	case *markdown.Table:
		r.table(n, prefix)

	case *markdown.Document:
		for _, c := range n.Children {
			r.block(c, prefix)
		}

	case *markdown.ListItem, *markdown.TableRow, *markdown.TableCell,
		*markdown.Text, *markdown.Bold, *markdown.Italic, *markdown.CodeInline, *markdown.Link:
		// Only reached through their containers.
	}
}

func (r *Renderer) listItem(it *markdown.ListItem, prefix, bullet string) {
	indent := strings.Repeat(" ", it.Indent)
	r.emit(it.LineStart, prefix, indent+bullet+r.inlines(it.Children))
}

func (r *Renderer) table(t *markdown.Table, prefix string) {
	cols := 0
	for _, row := range t.Rows {
		cols = max(cols, len(row.Cells))
	}
	cells := make([][]string, len(t.Rows))
	widths := make([]int, cols)
	for i, row := range t.Rows {
		cells[i] = make([]string, cols)
		for j, c := range row.Cells {
			s := r.inlines(c.Children)
			if row.Header {
				s = r.st.header.Render(s)
			}
			cells[i][j] = s
			widths[j] = max(widths[j], lipgloss.Width(s))
		}
	}

	for i, row := range t.Rows {
		parts := make([]string, cols)
		for j := range cols {
			parts[j] = pad(cells[i][j], widths[j], alignAt(t.Align, j))
		}
		line := "│ " + strings.Join(parts, " │ ") + " │"
		if r.active[row.LineStart] {
			line = r.st.active.Render(line)
		}
		r.emit(row.LineStart, prefix, line)
		if row.Header {
			seps := make([]string, cols)
			for j, w := range widths {
				seps[j] = strings.Repeat("─", w)
			}
			r.out = append(r.out, r.gutter(0)+prefix+"├─"+strings.Join(seps, "─┼─")+"─┤")
		}
	}
}

func alignAt(a []markdown.Align, i int) markdown.Align {
	if i < len(a) {
		return a[i]
	}
	return markdown.AlignNone
}

func pad(s string, w int, a markdown.Align) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	switch a {
	case markdown.AlignRight:
		return strings.Repeat(" ", gap) + s
	case markdown.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

func (r *Renderer) inlines(nodes []markdown.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(r.inline(n))
	}
	return b.String()
}

func (r *Renderer) inline(n markdown.Node) string {
	switch n := n.(type) {
	case *markdown.Text:
		return n.Value
	case *markdown.Bold:
		return r.st.bold.Render(r.inlines(n.Children))
	case *markdown.Italic:
		return r.st.italic.Render(r.inlines(n.Children))
	case *markdown.CodeInline:
		return r.st.code.Render(n.Value)
	case *markdown.Link:
		return r.st.link.Render(r.inlines(n.Children)) + " (" + n.URL + ")"
	}
	return markdown.PlainText(n)
}
