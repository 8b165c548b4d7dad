package markdown

// ToMap converts n into a JSON-friendly tree of maps for dumping.
func ToMap(n Node) map[string]any {
	ls, le := n.Lines()
	m := map[string]any{
		"type":       n.Kind().String(),
		"line_start": ls,
		"line_end":   le,
	}
	switch n := n.(type) {
	case *Text:
		m["text"] = n.Value
	case *CodeInline:
		m["text"] = n.Value
	case *CodeBlock:
		m["text"] = n.Value
		if n.Lang != "" {
			m["lang"] = n.Lang
		}
	case *Heading:
		m["level"] = n.Level
	case *ListItem:
		if n.Number > 0 {
			m["number"] = n.Number
		}
	case *Link:
		m["url"] = n.URL
	case *TableRow:
		m["header"] = n.Header
	}
	if kids := Children(n); len(kids) > 0 {
		children := make([]map[string]any, len(kids))
		for i, c := range kids {
			children[i] = ToMap(c)
		}
		m["children"] = children
	}
	return m
}
