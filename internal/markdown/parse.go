package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// maxDepth bounds blockquote re-parsing and inline nesting. Deeper content
// is kept as literal text.
const maxDepth = 64

type blockKind int

const (
	blockParagraph blockKind = iota
	blockBlank
	blockFence
	blockRule
	blockHeading
	blockBullet
	blockOrdered
	blockQuote
	blockTable
)

var (
	headingRe = regexp.MustCompile(`^\s*(#{1,6})[ \t]+(.*)$`)
	bulletRe  = regexp.MustCompile(`^(\s*)[*-][ \t]+(.*)$`)
	orderedRe = regexp.MustCompile(`^(\s*)(\d{1,9})\.[ \t]+(.*)$`)
	alignRe   = regexp.MustCompile(`^:?-+:?$`)
)

// Parse converts text into a Document. It accepts any input: constructs
// that do not match degrade to literal text.
func Parse(text string) *Document {
	lines := splitLines(text)
	p := &parser{lines: lines}
	return &Document{
		Span:     Span{LineStart: 1, LineEnd: lastLine(lines)},
		Children: p.blocks(),
	}
}

// splitLines normalises line endings and splits on "\n". A trailing newline
// leaves one empty final element.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// lastLine is the number of the last line an editor would show, ignoring the
// empty element produced by a trailing newline.
func lastLine(lines []string) int {
	n := len(lines)
	if n > 1 && lines[n-1] == "" {
		n--
	}
	return n
}

type parser struct {
	lines  []string
	offset int // source line number of lines[0], minus one
	depth  int
}

func (p *parser) lineNo(i int) int { return p.offset + i + 1 }

func (p *parser) span(from, to int) Span {
	return Span{LineStart: p.lineNo(from), LineEnd: p.lineNo(to)}
}

func (p *parser) blocks() []Node {
	var out []Node
	for i := 0; i < len(p.lines); {
		var n Node
		switch classify(p.lines[i]) {
		case blockBlank:
			i++
			continue
		case blockFence:
			n, i = p.fence(i)
		case blockRule:
			n, i = &HorizontalRule{Span: p.span(i, i)}, i+1
		case blockHeading:
			n, i = p.heading(i)
		case blockBullet:
			n, i = p.list(i, blockBullet)
		case blockOrdered:
			n, i = p.list(i, blockOrdered)
		case blockQuote:
			n, i = p.quote(i)
		case blockTable:
			n, i = p.table(i)
		default:
			n, i = p.paragraph(i)
		}
		out = append(out, n)
	}
	return out
}

func classify(line string) blockKind {
	t := strings.TrimSpace(line)
	switch {
	case t == "":
		return blockBlank
	case isFenceOpen(t):
		return blockFence
	case isRule(t):
		return blockRule
	case headingRe.MatchString(line):
		return blockHeading
	case bulletRe.MatchString(line):
		return blockBullet
	case orderedRe.MatchString(line):
		return blockOrdered
	case strings.HasPrefix(t, ">"):
		return blockQuote
	case isTableRow(t):
		return blockTable
	}
	return blockParagraph
}

func isFenceOpen(t string) bool {
	return strings.HasPrefix(t, "```") && !strings.Contains(t[3:], "`")
}

func isRule(t string) bool {
	if len(t) < 3 {
		return false
	}
	c := t[0]
	if c != '-' && c != '*' {
		return false
	}
	return strings.Count(t, string(c)) == len(t)
}

func isTableRow(t string) bool {
	return strings.HasPrefix(t, "|") && strings.Count(t, "|") >= 2
}

func (p *parser) fence(i int) (Node, int) {
	start := i
	lang := strings.TrimSpace(strings.TrimSpace(p.lines[i])[3:])
	var body []string
	for i++; i < len(p.lines); i++ {
		if strings.TrimSpace(p.lines[i]) == "```" {
			return &CodeBlock{
				Span:  p.span(start, i),
				Lang:  lang,
				Value: strings.Join(body, "\n"),
			}, i + 1
		}
		body = append(body, p.lines[i])
	}
	// Unterminated: the block runs to the end of the input.
	for len(body) > 0 && body[len(body)-1] == "" {
		body = body[:len(body)-1]
	}
	return &CodeBlock{
		Span:  p.span(start, start+len(body)),
		Lang:  lang,
		Value: strings.Join(body, "\n"),
	}, len(p.lines)
}

func (p *parser) heading(i int) (Node, int) {
	m := headingRe.FindStringSubmatch(p.lines[i])
	ln := p.lineNo(i)
	return &Heading{
		Span:     p.span(i, i),
		Level:    len(m[1]),
		Children: parseInline(strings.TrimSpace(m[2]), ln, ln, 0),
	}, i + 1
}

func (p *parser) list(i int, kind blockKind) (Node, int) {
	start, last := i, i
	var items []*ListItem
	for i < len(p.lines) {
		line := p.lines[i]
		if classify(line) == blockBlank {
			if i+1 < len(p.lines) && classify(p.lines[i+1]) == kind {
				i++
				continue
			}
			break
		}
		if classify(line) != kind {
			break
		}
		items = append(items, p.listItem(i, kind))
		last = i
		i++
	}
	if kind == blockOrdered {
		return &ListOrdered{Span: p.span(start, last), Items: items}, i
	}
	return &ListUnordered{Span: p.span(start, last), Items: items}, i
}

func (p *parser) listItem(i int, kind blockKind) *ListItem {
	ln := p.lineNo(i)
	it := &ListItem{Span: p.span(i, i)}
	var text string
	if kind == blockOrdered {
		m := orderedRe.FindStringSubmatch(p.lines[i])
		it.Indent = len(m[1])
		it.Number, _ = strconv.Atoi(m[2])
		text = m[3]
	} else {
		m := bulletRe.FindStringSubmatch(p.lines[i])
		it.Indent = len(m[1])
		text = m[2]
	}
	it.Children = parseInline(strings.TrimSpace(text), ln, ln, 0)
	return it
}

// quoteContent strips the quote marker and one optional following space.
func quoteContent(line string) (string, bool) {
	t := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(t, ">") {
		return "", false
	}
	t = t[1:]
	return strings.TrimPrefix(t, " "), true
}

func (p *parser) quote(i int) (Node, int) {
	start, last := i, i
	var segs []string
	for i < len(p.lines) {
		if rest, ok := quoteContent(p.lines[i]); ok {
			segs = append(segs, rest)
			last = i
			i++
			continue
		}
		if classify(p.lines[i]) == blockBlank && i+1 < len(p.lines) {
			if _, ok := quoteContent(p.lines[i+1]); ok {
				segs = append(segs, "")
				i++
				continue
			}
		}
		break
	}
	bq := &Blockquote{Span: p.span(start, last)}
	if p.depth+1 >= maxDepth {
		var parts []string
		for _, s := range segs {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		bq.Children = []Node{&Paragraph{
			Span:     bq.Span,
			Children: []Node{&Text{Span: bq.Span, Value: strings.Join(parts, " ")}},
		}}
		return bq, i
	}
	sub := &parser{lines: segs, offset: p.lineNo(start) - 1, depth: p.depth + 1}
	bq.Children = sub.blocks()
	return bq, i
}

func (p *parser) table(i int) (Node, int) {
	start := i
	first := p.row(i)
	i++
	t := &Table{}
	if i < len(p.lines) && isSeparator(p.lines[i]) {
		first.Header = true
		t.Align = alignments(p.lines[i])
		i++
	}
	t.Rows = append(t.Rows, first)
	for i < len(p.lines) && isTableRow(strings.TrimSpace(p.lines[i])) {
		t.Rows = append(t.Rows, p.row(i))
		i++
	}
	t.Span = p.span(start, i-1)
	return t, i
}

func (p *parser) row(i int) *TableRow {
	ln := p.lineNo(i)
	r := &TableRow{Span: p.span(i, i)}
	for _, c := range splitCells(p.lines[i]) {
		r.Cells = append(r.Cells, &TableCell{
			Span:     r.Span,
			Children: parseInline(c, ln, ln, 0),
		})
	}
	return r
}

// splitCells splits a table row on unescaped pipes, dropping the outer ones.
func splitCells(line string) []string {
	t := strings.TrimSpace(line)
	t = strings.TrimPrefix(t, "|")
	if strings.HasSuffix(t, "|") && !strings.HasSuffix(t, `\|`) {
		t = t[:len(t)-1]
	}
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(t); i++ {
		switch {
		case t[i] == '\\' && i+1 < len(t) && t[i+1] == '|':
			cur.WriteByte('|')
			i++
		case t[i] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(t[i])
		}
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

func isSeparator(line string) bool {
	t := strings.TrimSpace(line)
	if !strings.Contains(t, "|") || !strings.Contains(t, "-") {
		return false
	}
	if strings.Trim(t, "|-: \t") != "" {
		return false
	}
	for _, c := range splitCells(t) {
		if !alignRe.MatchString(c) {
			return false
		}
	}
	return true
}

func alignments(line string) []Align {
	cells := splitCells(line)
	out := make([]Align, len(cells))
	for i, c := range cells {
		left, right := strings.HasPrefix(c, ":"), strings.HasSuffix(c, ":")
		switch {
		case left && right:
			out[i] = AlignCenter
		case right:
			out[i] = AlignRight
		case left:
			out[i] = AlignLeft
		}
	}
	return out
}

func (p *parser) paragraph(i int) (Node, int) {
	start := i
	parts := []string{strings.TrimSpace(p.lines[i])}
	for i++; i < len(p.lines) && classify(p.lines[i]) == blockParagraph; i++ {
		parts = append(parts, strings.TrimSpace(p.lines[i]))
	}
	sp := p.span(start, i-1)
	return &Paragraph{
		Span:     sp,
		Children: parseInline(strings.Join(parts, " "), sp.LineStart, sp.LineEnd, 0),
	}, i
}
