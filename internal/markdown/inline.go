package markdown

import "strings"

// escapable lists the characters a backslash turns into literals.
const escapable = "*_\\`[]()"

// parseInline splits text into inline nodes. All produced nodes share the
// line range [ls, le] of the enclosing block.
func parseInline(text string, ls, le, depth int) []Node {
	sp := Span{LineStart: ls, LineEnd: le}
	if depth >= maxDepth {
		if text == "" {
			return nil
		}
		return []Node{&Text{Span: sp, Value: text}}
	}

	var out []Node
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, &Text{Span: sp, Value: buf.String()})
			buf.Reset()
		}
	}
	emit := func(n Node) {
		flush()
		out = append(out, n)
	}
	inner := func(s string) []Node { return parseInline(s, ls, le, depth+1) }

	for i := 0; i < len(text); {
		switch c := text[i]; c {
		case '\\':
			if i+1 < len(text) && strings.IndexByte(escapable, text[i+1]) >= 0 {
				buf.WriteByte(text[i+1])
				i += 2
				continue
			}
			buf.WriteByte('\\')
			i++

		case '`':
			if j := findClose(text, i+1, "`"); j > i+1 {
				emit(&CodeInline{Span: sp, Value: text[i+1 : j]})
				i = j + 1
				continue
			}
			buf.WriteByte('`')
			i++

		case '*':
			if strings.HasPrefix(text[i:], "**") {
				if j := findClose(text, i+2, "**"); j > i+2 {
					emit(&Bold{Span: sp, Children: inner(text[i+2 : j])})
					i = j + 2
					continue
				}
				buf.WriteString("**")
				i += 2
				continue
			}
			if j := findSingleStar(text, i+1); j > i+1 {
				emit(&Italic{Span: sp, Children: inner(text[i+1 : j])})
				i = j + 1
				continue
			}
			buf.WriteByte('*')
			i++

		case '_':
			if j := findClose(text, i+1, "_"); j > i+1 {
				emit(&Italic{Span: sp, Children: inner(text[i+1 : j])})
				i = j + 1
				continue
			}
			buf.WriteByte('_')
			i++

		case '[':
			if link, next, ok := parseLink(text, i, inner); ok {
				link.Span = sp
				emit(link)
				i = next
				continue
			}
			buf.WriteByte('[')
			i++

		default:
			buf.WriteByte(c)
			i++
		}
	}
	flush()
	return out
}

// findClose returns the index of the first occurrence of delim at or after
// from, treating every backslash pair as a single unit. It returns -1 when
// there is none.
func findClose(s string, from int, delim string) int {
	for i := from; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			continue
		}
		if strings.HasPrefix(s[i:], delim) {
			return i
		}
	}
	return -1
}

// findSingleStar is findClose for a lone '*': it closes on the nearest '*'
// not immediately followed by another '*'. A "**" that opens a complete bold
// span is stepped over whole so bold can nest inside italics; any other run
// only loses its first star.
func findSingleStar(s string, from int) int {
	for i := from; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			i++
		case s[i] == '*' && i+1 < len(s) && s[i+1] == '*':
			if j := findClose(s, i+2, "**"); j > i+2 {
				i = j + 1
			}
		case s[i] == '*':
			return i
		}
	}
	return -1
}

// parseLink matches [text](url) starting at the '[' at index i.
func parseLink(s string, i int, inner func(string) []Node) (*Link, int, bool) {
	j := findClose(s, i+1, "]")
	if j < 0 || j+1 >= len(s) || s[j+1] != '(' {
		return nil, 0, false
	}
	k := findClose(s, j+2, ")")
	if k < 0 {
		return nil, 0, false
	}
	return &Link{
		URL:      unescape(strings.TrimSpace(s[j+2 : k])),
		Children: inner(s[i+1 : j]),
	}, k + 1, true
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(escapable, s[i+1]) >= 0 {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
