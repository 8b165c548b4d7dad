package render

import (
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/rcliao/scriptsync/internal/markdown"
	"github.com/rcliao/scriptsync/internal/model"
)

const script = `# Scene 1

Some **bold** and *soft* words with ` + "`code`" + `.

| Cue | Time |
|:----|-----:|
| Rain | 3 |

- one
- two

> quoted
`

func plain() *Renderer { return New(WithOutput(io.Discard)) }

func outputLines(s string) []string { return strings.Split(s, "\n") }

func TestRender_Blocks(t *testing.T) {
	out := plain().Render(markdown.Parse(script))

	for _, want := range []string{
		"# Scene 1",
		"Some bold and soft words with code.",
		"│ Cue  │ Time │",
		"│ Rain │    3 │",
		"• one",
		"• two",
		"│ quoted",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_GutterMarksLinkedAndActive(t *testing.T) {
	r := plain()
	frags := []model.Fragment{
		{LineStart: 1, LineEnd: 1, NodeType: model.NodeHeading, Category: model.CategoryMusic},
		{LineStart: 7, LineEnd: 7, NodeType: model.NodeTableRow, RowIndex: 1},
	}
	r.SetFragments(frags)
	r.SetActive(frags[1:])
	doc := markdown.Parse(script)
	out := r.Render(doc)

	row, ok := r.Row(1)
	if !ok {
		t.Fatal("heading row not recorded")
	}
	if got := outputLines(out)[row]; !strings.HasPrefix(got, markLinked+" ") {
		t.Errorf("expected linked mark on heading, got %q", got)
	}

	row, ok = r.Row(7)
	if !ok {
		t.Fatal("table row not recorded")
	}
	if got := outputLines(out)[row]; !strings.HasPrefix(got, markActive+" ") {
		t.Errorf("expected active mark on table row, got %q", got)
	}

	row, _ = r.Row(3)
	if got := outputLines(out)[row]; !strings.HasPrefix(got, markNone+" ") {
		t.Errorf("expected empty gutter on paragraph, got %q", got)
	}
}

func TestRender_DoesNotMutateTree(t *testing.T) {
	doc := markdown.Parse(script)
	before := markdown.ToMap(doc)

	r := plain()
	r.SetActive([]model.Fragment{{LineStart: 1, LineEnd: 3}})
	r.Render(doc)

	if !reflect.DeepEqual(before, markdown.ToMap(doc)) {
		t.Error("render changed the tree")
	}
}

func TestRender_OrderedListAndCode(t *testing.T) {
	src := "3. three\n4. four\n\n```go\nx := 1\n```\n"
	r := plain()
	out := r.Render(markdown.Parse(src))

	if !strings.Contains(out, "3. three") || !strings.Contains(out, "4. four") {
		t.Errorf("ordered items missing:\n%s", out)
	}
	if !strings.Contains(out, "x := 1") {
		t.Errorf("code missing:\n%s", out)
	}
	row, ok := r.Row(5)
	if !ok || !strings.Contains(outputLines(out)[row], "x := 1") {
		t.Errorf("code line 5 not tracked: row=%d ok=%v", row, ok)
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		align markdown.Align
		want  string
	}{
		{markdown.AlignNone, "ab   "},
		{markdown.AlignLeft, "ab   "},
		{markdown.AlignRight, "   ab"},
		{markdown.AlignCenter, " ab  "},
	}
	for _, tt := range tests {
		if got := pad("ab", 5, tt.align); got != tt.want {
			t.Errorf("pad(%v) = %q, want %q", tt.align, got, tt.want)
		}
	}
}

func TestCategoryColor(t *testing.T) {
	if categoryColor(model.CategoryUnset) != colorVoice {
		t.Error("unset should draw as voice")
	}
	if categoryColor(model.CategoryEffect) != colorEffect {
		t.Error("effect color")
	}
}
