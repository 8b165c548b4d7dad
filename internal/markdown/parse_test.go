package markdown

import (
	"strings"
	"testing"
)

func onlyChild(t *testing.T, doc *Document) Node {
	t.Helper()
	if len(doc.Children) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Children))
	}
	return doc.Children[0]
}

func TestParse_NeverFails(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t\n",
		"**",
		"*",
		"[",
		"[a](",
		"`",
		`\`,
		"| |",
		"```",
		"> ",
		"1.",
		"- ",
		"#",
		strings.Repeat(">", 300) + " deep",
		strings.Repeat("*_`[", 400),
		strings.Repeat("**a ", 200),
		"\r\n\r",
		"|---|\n|---|",
	}
	for _, in := range inputs {
		doc := Parse(in)
		if doc == nil {
			t.Fatalf("Parse(%q) returned nil", in)
		}
		Walk(doc, func(n Node) bool {
			ls, le := n.Lines()
			if le < ls || ls < 1 {
				t.Errorf("Parse(%q): %s has bad range [%d,%d]", in, n.Kind(), ls, le)
			}
			return true
		})
		prev := 0
		for _, c := range doc.Children {
			ls, le := c.Lines()
			if ls <= prev {
				t.Errorf("Parse(%q): top-level %s starts at %d, overlapping previous end %d", in, c.Kind(), ls, prev)
			}
			prev = le
		}
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	doc := Parse("")
	if len(doc.Children) != 0 {
		t.Errorf("expected no blocks, got %d", len(doc.Children))
	}
	if doc.LineStart != 1 || doc.LineEnd != 1 {
		t.Errorf("expected [1,1], got [%d,%d]", doc.LineStart, doc.LineEnd)
	}
}

func TestParse_HeadingNeedsSpace(t *testing.T) {
	p, ok := onlyChild(t, Parse("#NoSpace")).(*Paragraph)
	if !ok {
		t.Fatal("expected paragraph")
	}
	if got := PlainText(p); got != "#NoSpace" {
		t.Errorf("expected %q, got %q", "#NoSpace", got)
	}

	h, ok := onlyChild(t, Parse("# Title")).(*Heading)
	if !ok {
		t.Fatal("expected heading")
	}
	if h.Level != 1 {
		t.Errorf("expected level 1, got %d", h.Level)
	}
	if got := PlainText(h); got != "Title" {
		t.Errorf("expected %q, got %q", "Title", got)
	}
}

func TestParse_HeadingLevels(t *testing.T) {
	for level := 1; level <= 6; level++ {
		h, ok := onlyChild(t, Parse(strings.Repeat("#", level)+" x")).(*Heading)
		if !ok || h.Level != level {
			t.Errorf("level %d not parsed as heading", level)
		}
	}
	if _, ok := onlyChild(t, Parse("####### seven")).(*Paragraph); !ok {
		t.Error("seven hashes should be a paragraph")
	}
}

func TestParse_ParagraphSoftBreaks(t *testing.T) {
	doc := Parse("line one\n  line two\n# Next")
	if len(doc.Children) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Children))
	}
	p := doc.Children[0].(*Paragraph)
	if got := PlainText(p); got != "line one line two" {
		t.Errorf("got %q", got)
	}
	if p.LineStart != 1 || p.LineEnd != 2 {
		t.Errorf("expected [1,2], got [%d,%d]", p.LineStart, p.LineEnd)
	}
	if h := doc.Children[1].(*Heading); h.LineStart != 3 {
		t.Errorf("expected heading on line 3, got %d", h.LineStart)
	}
}

func TestParse_LineEndings(t *testing.T) {
	p := onlyChild(t, Parse("a\r\nb\rc")).(*Paragraph)
	if got := PlainText(p); got != "a b c" {
		t.Errorf("got %q", got)
	}
	if p.LineEnd != 3 {
		t.Errorf("expected line end 3, got %d", p.LineEnd)
	}
}

func TestParse_FencedCode(t *testing.T) {
	doc := Parse("```go\nfunc x() {}\n**not bold**\n```\nafter")
	if len(doc.Children) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Children))
	}
	cb := doc.Children[0].(*CodeBlock)
	if cb.Lang != "go" {
		t.Errorf("expected lang go, got %q", cb.Lang)
	}
	if cb.Value != "func x() {}\n**not bold**" {
		t.Errorf("unexpected body %q", cb.Value)
	}
	if cb.LineStart != 1 || cb.LineEnd != 4 {
		t.Errorf("expected [1,4], got [%d,%d]", cb.LineStart, cb.LineEnd)
	}
}

func TestParse_UnterminatedFence(t *testing.T) {
	cb, ok := onlyChild(t, Parse("```\na\n\nb\n")).(*CodeBlock)
	if !ok {
		t.Fatal("expected code block")
	}
	if cb.Value != "a\n\nb" {
		t.Errorf("unexpected body %q", cb.Value)
	}
	if cb.LineEnd != 4 {
		t.Errorf("expected line end 4, got %d", cb.LineEnd)
	}
}

func TestParse_HorizontalRule(t *testing.T) {
	for _, in := range []string{"---", "*****", "  ---  "} {
		if _, ok := onlyChild(t, Parse(in)).(*HorizontalRule); !ok {
			t.Errorf("%q: expected rule", in)
		}
	}
}

func TestParse_UnorderedList(t *testing.T) {
	doc := Parse("- a\n* b\n\n- c\n\nText")
	if len(doc.Children) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Children))
	}
	l := doc.Children[0].(*ListUnordered)
	if len(l.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(l.Items))
	}
	if l.LineStart != 1 || l.LineEnd != 4 {
		t.Errorf("expected [1,4], got [%d,%d]", l.LineStart, l.LineEnd)
	}
	if got := PlainText(l.Items[2]); got != "c" {
		t.Errorf("expected c, got %q", got)
	}
	if p := doc.Children[1].(*Paragraph); p.LineStart != 6 {
		t.Errorf("expected paragraph on line 6, got %d", p.LineStart)
	}
}

func TestParse_ListEndsOnDoubleBlank(t *testing.T) {
	doc := Parse("- a\n\n\n- b")
	if len(doc.Children) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(doc.Children))
	}
}

func TestParse_OrderedListKeepsNumbers(t *testing.T) {
	l, ok := onlyChild(t, Parse("3. x\n  7. y")).(*ListOrdered)
	if !ok {
		t.Fatal("expected ordered list")
	}
	if l.Items[0].Number != 3 || l.Items[1].Number != 7 {
		t.Errorf("expected 3,7 got %d,%d", l.Items[0].Number, l.Items[1].Number)
	}
	if l.Items[1].Indent != 2 {
		t.Errorf("expected indent 2, got %d", l.Items[1].Indent)
	}
}

func TestParse_Blockquote(t *testing.T) {
	bq, ok := onlyChild(t, Parse("> # Quoted\n> text\n\n> more")).(*Blockquote)
	if !ok {
		t.Fatal("expected blockquote")
	}
	if bq.LineStart != 1 || bq.LineEnd != 4 {
		t.Errorf("expected [1,4], got [%d,%d]", bq.LineStart, bq.LineEnd)
	}
	if len(bq.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(bq.Children))
	}
	h := bq.Children[0].(*Heading)
	if h.LineStart != 1 || PlainText(h) != "Quoted" {
		t.Errorf("unexpected heading %q at %d", PlainText(h), h.LineStart)
	}
	if p := bq.Children[2].(*Paragraph); p.LineStart != 4 {
		t.Errorf("expected quoted paragraph on line 4, got %d", p.LineStart)
	}
}

func TestParse_TableWithHeader(t *testing.T) {
	tbl, ok := onlyChild(t, Parse("| a | b |\n|---|:-:|\n| 1 | 2 |")).(*Table)
	if !ok {
		t.Fatal("expected table")
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if !tbl.Rows[0].Header {
		t.Error("first row should be a header")
	}
	if tbl.Rows[1].Header {
		t.Error("second row should not be a header")
	}
	if tbl.Rows[1].LineStart != 3 {
		t.Errorf("expected body row on line 3, got %d", tbl.Rows[1].LineStart)
	}
	if len(tbl.Align) != 2 || tbl.Align[1] != AlignCenter {
		t.Errorf("unexpected alignment %v", tbl.Align)
	}
	if tbl.LineEnd != 3 {
		t.Errorf("expected table to end on line 3, got %d", tbl.LineEnd)
	}
}

func TestParse_TableWithoutHeader(t *testing.T) {
	tbl := onlyChild(t, Parse("| a | b |\n| 1 | 2 |")).(*Table)
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	for i, r := range tbl.Rows {
		if r.Header {
			t.Errorf("row %d should not be a header", i)
		}
	}
}

func TestParse_TableEscapedPipe(t *testing.T) {
	tbl := onlyChild(t, Parse(`| a \| b | c |`)).(*Table)
	cells := tbl.Rows[0].Cells
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if got := PlainText(cells[0]); got != "a | b" {
		t.Errorf("got %q", got)
	}
}

func TestParse_TableStopsAtText(t *testing.T) {
	doc := Parse("| a | b |\n| 1 | 2 |\nafter")
	if len(doc.Children) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Children))
	}
	if _, ok := doc.Children[1].(*Paragraph); !ok {
		t.Error("expected trailing paragraph")
	}
}

func TestParse_SingleLeadingPipeIsText(t *testing.T) {
	if _, ok := onlyChild(t, Parse("| just one")).(*Paragraph); !ok {
		t.Error("a single pipe is not a table row")
	}
}
