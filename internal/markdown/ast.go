// Package markdown parses markdown text into a line-positioned syntax tree.
//
// The tree is a closed set of node types behind the Node interface. Every
// node carries the 1-based, inclusive source line range it was built from.
// Trees are never mutated after Parse returns them.
package markdown

// Kind identifies the concrete type of a Node.
type Kind int

const (
	KindDocument Kind = iota
	KindHeading
	KindParagraph
	KindText
	KindBold
	KindItalic
	KindCodeInline
	KindCodeBlock
	KindListUnordered
	KindListOrdered
	KindListItem
	KindBlockquote
	KindLink
	KindHorizontalRule
	KindTable
	KindTableRow
	KindTableCell
)

var kindNames = [...]string{
	KindDocument:       "document",
	KindHeading:        "heading",
	KindParagraph:      "paragraph",
	KindText:           "text",
	KindBold:           "bold",
	KindItalic:         "italic",
	KindCodeInline:     "code_inline",
	KindCodeBlock:      "code_block",
	KindListUnordered:  "list_unordered",
	KindListOrdered:    "list_ordered",
	KindListItem:       "list_item",
	KindBlockquote:     "blockquote",
	KindLink:           "link",
	KindHorizontalRule: "horizontal_rule",
	KindTable:          "table",
	KindTableRow:       "table_row",
	KindTableCell:      "table_cell",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is implemented by every node type in this package and nowhere else.
type Node interface {
	Kind() Kind
	Lines() (start, end int)
	node()
}

// Span is the inclusive source line range of a node.
type Span struct {
	LineStart int
	LineEnd   int
}

func (s Span) Lines() (int, int) { return s.LineStart, s.LineEnd }
func (Span) node()                {}

type Document struct {
	Span
	Children []Node
}

type Heading struct {
	Span
	Level    int
	Children []Node
}

type Paragraph struct {
	Span
	Children []Node
}

type Text struct {
	Span
	Value string
}

type Bold struct {
	Span
	Children []Node
}

type Italic struct {
	Span
	Children []Node
}

type CodeInline struct {
	Span
	Value string
}

// CodeBlock is a fenced block. Value holds the raw lines joined by "\n".
type CodeBlock struct {
	Span
	Lang  string
	Value string
}

type ListUnordered struct {
	Span
	Items []*ListItem
}

type ListOrdered struct {
	Span
	Items []*ListItem
}

// ListItem is one list entry. Number is the literal printed number for
// ordered lists and zero otherwise. Indent counts leading whitespace bytes.
type ListItem struct {
	Span
	Number   int
	Indent   int
	Children []Node
}

type Blockquote struct {
	Span
	Children []Node
}

type Link struct {
	Span
	URL      string
	Children []Node
}

type HorizontalRule struct {
	Span
}

// Align is a table column alignment taken from the separator row.
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

type Table struct {
	Span
	Align []Align
	Rows  []*TableRow
}

type TableRow struct {
	Span
	Header bool
	Cells  []*TableCell
}

type TableCell struct {
	Span
	Children []Node
}

func (*Document) Kind() Kind       { return KindDocument }
func (*Heading) Kind() Kind        { return KindHeading }
func (*Paragraph) Kind() Kind      { return KindParagraph }
func (*Text) Kind() Kind           { return KindText }
func (*Bold) Kind() Kind           { return KindBold }
func (*Italic) Kind() Kind         { return KindItalic }
func (*CodeInline) Kind() Kind     { return KindCodeInline }
func (*CodeBlock) Kind() Kind      { return KindCodeBlock }
func (*ListUnordered) Kind() Kind  { return KindListUnordered }
func (*ListOrdered) Kind() Kind    { return KindListOrdered }
func (*ListItem) Kind() Kind       { return KindListItem }
func (*Blockquote) Kind() Kind     { return KindBlockquote }
func (*Link) Kind() Kind           { return KindLink }
func (*HorizontalRule) Kind() Kind { return KindHorizontalRule }
func (*Table) Kind() Kind          { return KindTable }
func (*TableRow) Kind() Kind       { return KindTableRow }
func (*TableCell) Kind() Kind      { return KindTableCell }

// Children returns the direct children of n in order. Lists yield their
// items, tables their rows and rows their cells.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Document:
		return n.Children
	case *Heading:
		return n.Children
	case *Paragraph:
		return n.Children
	case *Bold:
		return n.Children
	case *Italic:
		return n.Children
	case *ListItem:
		return n.Children
	case *Blockquote:
		return n.Children
	case *Link:
		return n.Children
	case *TableCell:
		return n.Children
	case *ListUnordered:
		return itemNodes(n.Items)
	case *ListOrdered:
		return itemNodes(n.Items)
	case *Table:
		out := make([]Node, len(n.Rows))
		for i, r := range n.Rows {
			out[i] = r
		}
		return out
	case *TableRow:
		out := make([]Node, len(n.Cells))
		for i, c := range n.Cells {
			out[i] = c
		}
		return out
	case *Text, *CodeInline, *CodeBlock, *HorizontalRule:
		return nil
	}
	return nil
}

func itemNodes(items []*ListItem) []Node {
	out := make([]Node, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the node just visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}
