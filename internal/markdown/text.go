package markdown

import "strings"

// PlainText flattens the textual content of n, dropping all markup.
func PlainText(n Node) string {
	var b strings.Builder
	writePlain(&b, n)
	return strings.TrimSpace(b.String())
}

func writePlain(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Text:
		b.WriteString(n.Value)
	case *CodeInline:
		b.WriteString(n.Value)
	case *CodeBlock:
		b.WriteString(n.Value)
	case *TableRow:
		for i, c := range n.Cells {
			if i > 0 {
				b.WriteString(" | ")
			}
			writePlain(b, c)
		}
	default:
		kids := Children(n)
		for i, c := range kids {
			writePlain(b, c)
			if i < len(kids)-1 && isBlock(c) {
				b.WriteByte('\n')
			}
		}
	}
}

func isBlock(n Node) bool {
	switch n.Kind() {
	case KindText, KindBold, KindItalic, KindCodeInline, KindLink:
		return false
	}
	return true
}

// Headings returns every heading in doc, including those nested in
// blockquotes, in document order.
func Headings(doc *Document) []*Heading {
	var out []*Heading
	Walk(doc, func(n Node) bool {
		if h, ok := n.(*Heading); ok {
			out = append(out, h)
			return false
		}
		return true
	})
	return out
}
