package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/scriptsync/internal/markdown"
	"github.com/rcliao/scriptsync/internal/model"
	"github.com/rcliao/scriptsync/internal/timeline"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func newTestEngine(t *testing.T, host *timeline.Static, opts ...Option) *Engine {
	t.Helper()
	snap, err := timeline.NewSnapshot(host, 16)
	require.NoError(t, err)
	return New(snap, opts...)
}

func heading(line, end int, id string) Target {
	return Target{LineStart: line, LineEnd: end, Identifier: id, NodeType: model.NodeHeading}
}

func TestLinkAccumulatesOnOneFragment(t *testing.T) {
	e := newTestEngine(t, &timeline.Static{})

	assert.True(t, e.Link("a", heading(5, 9, "Intro")))
	assert.True(t, e.Link("b", heading(5, 9, "Intro")))
	assert.False(t, e.Link("a", heading(5, 9, "Intro")), "duplicate link")

	frags := e.Fragments()
	require.Len(t, frags, 1)
	assert.Equal(t, []string{"a", "b"}, frags[0].MediaIDs)
}

func TestLinkKeepsSortedOrder(t *testing.T) {
	e := newTestEngine(t, &timeline.Static{})
	e.Link("c", heading(20, 25, "C"))
	e.Link("a", heading(1, 4, "A"))
	e.Link("b", heading(10, 12, "B"))

	var starts []int
	for _, f := range e.Fragments() {
		starts = append(starts, f.LineStart)
	}
	assert.Equal(t, []int{1, 10, 20}, starts)
}

func TestUnlinkLastMediaRemovesFragment(t *testing.T) {
	e := newTestEngine(t, &timeline.Static{})
	e.Link("a", heading(3, 3, "X"))

	assert.True(t, e.UnlinkOne(3, "a"))
	_, ok := e.FindByLineStart(3)
	assert.False(t, ok)
	assert.False(t, e.UnlinkOne(3, "a"))
}

func TestUnlinkOneKeepsOtherMedia(t *testing.T) {
	e := newTestEngine(t, &timeline.Static{})
	e.Link("a", heading(3, 3, "X"))
	e.Link("b", heading(3, 3, "X"))

	assert.True(t, e.UnlinkOne(3, "a"))
	f, ok := e.FindByLineStart(3)
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, f.MediaIDs)
}

func TestUnlinkAll(t *testing.T) {
	e := newTestEngine(t, &timeline.Static{})
	e.Link("a", heading(3, 3, "X"))
	e.Link("b", heading(3, 3, "X"))

	assert.True(t, e.UnlinkAll(3))
	assert.Empty(t, e.Fragments())
	assert.False(t, e.UnlinkAll(3))
}

func TestFindContainingLineFirstMatch(t *testing.T) {
	e := newTestEngine(t, &timeline.Static{})
	e.Link("a", heading(1, 10, "Section"))
	e.Link("b", Target{LineStart: 4, LineEnd: 4, Identifier: "row", NodeType: model.NodeTableRow})

	f, ok := e.FindContainingLine(4)
	require.True(t, ok)
	assert.Equal(t, 1, f.LineStart)

	f, ok = e.FindContainingLine(10)
	require.True(t, ok)
	assert.Equal(t, 1, f.LineStart)

	_, ok = e.FindContainingLine(11)
	assert.False(t, ok)
}

func TestCycleColorCategory(t *testing.T) {
	e := newTestEngine(t, &timeline.Static{})
	e.Link("a", heading(1, 1, "X"))

	var got []model.Category
	for range 5 {
		c, ok := e.CycleColorCategory(1)
		require.True(t, ok)
		got = append(got, c)
	}
	assert.Equal(t, []model.Category{
		model.CategoryMusic, model.CategoryEffect, model.CategoryOther,
		model.CategoryVoice, model.CategoryMusic,
	}, got)

	_, ok := e.CycleColorCategory(99)
	assert.False(t, ok)
}

func itemsHost() *timeline.Static {
	return &timeline.Static{Media: []timeline.MediaItem{
		{ID: "a", Start: 10, Length: 10, Track: "VO"},
		{ID: "b", Start: 15, Length: 10, Track: "SFX"},
		{ID: "c", Start: 40, Length: 5, Track: "VO", Group: 3},
		{ID: "d", Start: 50, Length: 2, Track: "VO", Group: 3},
	}}
}

func TestActiveFragmentsInclusiveBoundaries(t *testing.T) {
	e := newTestEngine(t, itemsHost())
	e.Link("a", heading(1, 4, "A"))

	for _, tc := range []struct {
		at     float64
		active bool
	}{
		{9.999, false},
		{10, true},
		{15, true},
		{20, true},
		{20.001, false},
	} {
		got := e.ActiveFragments(tc.at, true)
		assert.Equal(t, tc.active, len(got) == 1, "t=%v", tc.at)
	}
}

func TestActiveFragmentsStoppedIsEmpty(t *testing.T) {
	e := newTestEngine(t, itemsHost())
	e.Link("a", heading(1, 4, "A"))
	assert.Empty(t, e.ActiveFragments(12, false))
}

func TestActiveFragmentsMultiple(t *testing.T) {
	e := newTestEngine(t, itemsHost())
	e.Link("b", heading(8, 9, "B"))
	e.Link("a", heading(1, 4, "A"))

	got := e.ActiveFragments(17, true)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].LineStart)
	assert.Equal(t, 8, got[1].LineStart)
}

func TestActiveFragmentsSkipsStaleReferences(t *testing.T) {
	host := itemsHost()
	e := newTestEngine(t, host)
	e.Link("gone", heading(1, 4, "A"))
	e.Link("a", heading(1, 4, "A"))

	got := e.ActiveFragments(12, true)
	require.Len(t, got, 1)

	host.RemoveItem("a")
	e.Snapshot().Refresh()
	assert.Empty(t, e.ActiveFragments(12, true))
	_, ok := e.FindByLineStart(1)
	assert.True(t, ok, "stale fragments are not removed")
}

func TestActiveFragmentsRegion(t *testing.T) {
	host := &timeline.Static{Marks: []timeline.Region{{ID: 2, Name: "Scene", Start: 5, End: 8}}}
	e := newTestEngine(t, host)
	require.True(t, e.LinkRegion(2, heading(1, 3, "Scene")))

	assert.Len(t, e.ActiveFragments(5, true), 1)
	assert.Len(t, e.ActiveFragments(8, true), 1)
	assert.Empty(t, e.ActiveFragments(8.5, true))
}

func TestTickThrottle(t *testing.T) {
	clock := newClock()
	e := newTestEngine(t, itemsHost(), WithClock(clock.now))
	e.Link("a", heading(1, 4, "A"))

	r := e.Tick(12, true)
	assert.True(t, r.Changed)
	require.Len(t, r.Active, 1)
	assert.True(t, r.AutoScroll)

	clock.advance(10 * time.Millisecond)
	r = e.Tick(30, true)
	assert.False(t, r.Changed)
	assert.Len(t, r.Active, 1, "cached result within throttle")

	clock.advance(DefaultThrottle)
	r = e.Tick(30, true)
	assert.True(t, r.Changed)
	assert.Empty(t, r.Active)

	clock.advance(DefaultThrottle)
	r = e.Tick(31, true)
	assert.False(t, r.Changed)
}

func TestTickReportsAutoScrollSetting(t *testing.T) {
	e := newTestEngine(t, itemsHost(), WithAutoScroll(false))
	assert.False(t, e.Tick(0, false).AutoScroll)
}

func TestResolveGroup(t *testing.T) {
	e := newTestEngine(t, itemsHost())
	assert.Equal(t, []string{"c", "d"}, e.ResolveGroup("c"))
	assert.Equal(t, []string{"c", "d"}, e.ResolveGroup("d"))
	assert.Equal(t, []string{"a"}, e.ResolveGroup("a"))
	assert.Equal(t, []string{"missing"}, e.ResolveGroup("missing"))
}

func TestGroupInterval(t *testing.T) {
	e := newTestEngine(t, itemsHost())
	iv, ok := e.GroupInterval([]string{"c", "d", "missing"})
	require.True(t, ok)
	assert.Equal(t, timeline.Interval{Start: 40, End: 52}, iv)

	_, ok = e.GroupInterval([]string{"missing"})
	assert.False(t, ok)
}

func TestLinkGroupAndUnlinkGroup(t *testing.T) {
	e := newTestEngine(t, itemsHost())
	assert.Equal(t, 2, e.LinkGroup("d", heading(7, 9, "G")))

	f, ok := e.FindByLineStart(7)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"c", "d"}, f.MediaIDs)

	assert.Equal(t, 2, e.UnlinkGroup(7, "c"))
	_, ok = e.FindByLineStart(7)
	assert.False(t, ok)
}

func TestInterval(t *testing.T) {
	host := itemsHost()
	host.AddRegion(timeline.Region{ID: 1, Name: "R", Start: 5, End: 12})
	e := newTestEngine(t, host)

	iv, ok := e.Interval(model.Fragment{MediaIDs: []string{"a"}, RegionID: 1})
	require.True(t, ok)
	assert.Equal(t, timeline.Interval{Start: 5, End: 20}, iv)

	_, ok = e.Interval(model.Fragment{MediaIDs: []string{"gone"}})
	assert.False(t, ok)
}

const scenes = "# Scene 1\n\nText.\n\n# Scene 2\n\nMore.\n"

func TestAutoLinkHeadingsScenario(t *testing.T) {
	host := &timeline.Static{Marks: []timeline.Region{
		{ID: 1, Name: "Scene 1", Start: 0, End: 10},
		{ID: 2, Name: "Scene 2", Start: 10, End: 20},
	}}
	e := newTestEngine(t, host)

	doc := markdown.Parse(scenes)
	assert.Equal(t, 2, e.AutoLinkHeadings(doc))

	frags := e.Fragments()
	require.Len(t, frags, 2)
	assert.Equal(t, [2]int{1, 4}, [2]int{frags[0].LineStart, frags[0].LineEnd})
	assert.Equal(t, [2]int{5, 7}, [2]int{frags[1].LineStart, frags[1].LineEnd})
	assert.Equal(t, 1, frags[0].RegionID)
	assert.Equal(t, 2, frags[1].RegionID)

	assert.Zero(t, e.AutoLinkHeadings(doc), "already linked regions are skipped")
}

func TestAutoLinkHeadingsFuzzy(t *testing.T) {
	host := &timeline.Static{Marks: []timeline.Region{
		{ID: 1, Name: "the opening", Start: 0, End: 10},
		{ID: 2, Name: "O", Start: 10, End: 20},
	}}
	doc := markdown.Parse("# The Opening!\n\ntext\n\n## Outro, part two\n")

	e := newTestEngine(t, host)
	assert.Equal(t, 2, e.AutoLinkHeadings(doc))
	f, ok := e.FindByLineStart(1)
	require.True(t, ok)
	assert.Equal(t, 1, f.RegionID)

	strict := newTestEngine(t, host, WithMinMatchLength(3))
	assert.Equal(t, 1, strict.AutoLinkHeadings(doc))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "scene1 the start", Normalize("  Scene-1:  THE   Start!! "))
	assert.Equal(t, "scene 1", Normalize("Scene 1."))
	assert.Equal(t, "", Normalize("***"))
}

func TestTargets(t *testing.T) {
	doc := markdown.Parse("# Shots\n\n| Shot | Note |\n|---|---|\n| A | x |\n| B | y |\n| A | z |\n")
	ts := Targets(doc)
	require.Len(t, ts, 4)
	assert.Equal(t, model.NodeHeading, ts[0].NodeType)
	assert.Equal(t, "Shots", ts[0].Identifier)

	rows := ts[1:]
	assert.Equal(t, "A", rows[0].Identifier)
	assert.Equal(t, 0, rows[0].RowIndex)
	assert.Equal(t, "A", rows[2].Identifier)
	assert.Equal(t, 1, rows[2].RowIndex)

	got, ok := TargetAt(doc, 6)
	require.True(t, ok)
	assert.Equal(t, model.NodeTableRow, got.NodeType)
	assert.Equal(t, "B", got.Identifier)

	got, ok = TargetAt(doc, 2)
	require.True(t, ok)
	assert.Equal(t, model.NodeHeading, got.NodeType)
}

func TestStaleAfterDocumentEdit(t *testing.T) {
	e := newTestEngine(t, itemsHost())
	e.SetDocument("/tmp/a.md", "one")
	e.Link("a", heading(1, 1, "one"))
	assert.False(t, e.Stale())

	e.SetDocument("/tmp/a.md", "two")
	assert.True(t, e.Stale())
	assert.Len(t, e.Fragments(), 1)

	e.SetDocument("/tmp/b.md", "two")
	assert.Empty(t, e.Fragments(), "switching documents drops the mapping")
}
