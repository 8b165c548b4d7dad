package timeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const project = `
playhead = 12.5
playing = true

[[items]]
id = "a"
start = 10.0
length = 10.0
track = "VO"
group = 7

[[items]]
id = "b"
start = 25.0
length = 5.0
track = "VO"
group = 7

[[items]]
id = "c"
start = 0.0
length = 3.0
track = "SFX"

[[regions]]
id = 1
name = "Scene 1"
start = 0.0
end = 30.0
`

func writeProject(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.toml")
	require.NoError(t, os.WriteFile(path, []byte(project), 0o644))
	return path
}

func TestIntervalContainsIsInclusive(t *testing.T) {
	iv := MediaItem{Start: 10, Length: 10}.Interval()
	assert.True(t, iv.Contains(10))
	assert.True(t, iv.Contains(20))
	assert.False(t, iv.Contains(9.999))
	assert.False(t, iv.Contains(20.001))
}

func TestIntervalUnion(t *testing.T) {
	u := Interval{Start: 5, End: 8}.Union(Interval{Start: 2, End: 6})
	assert.Equal(t, Interval{Start: 2, End: 8}, u)
	assert.Equal(t, 6.0, u.Duration())
}

func TestLoadStatic(t *testing.T) {
	s, err := LoadStatic(writeProject(t))
	require.NoError(t, err)

	pos, playing := s.Transport()
	assert.Equal(t, 12.5, pos)
	assert.True(t, playing)
	require.Len(t, s.Items(), 3)
	require.Len(t, s.Regions(), 1)
	assert.Equal(t, "Scene 1", s.Regions()[0].Name)

	m, ok := s.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 7, m.Group)
}

func TestStaticSaveRoundTrip(t *testing.T) {
	path := writeProject(t)
	s, err := LoadStatic(path)
	require.NoError(t, err)

	s.SetPlayhead(3)
	s.SelectItems([]string{"c"})
	require.NoError(t, s.Save(path))

	again, err := LoadStatic(path)
	require.NoError(t, err)
	pos, _ := again.Transport()
	assert.Equal(t, 3.0, pos)
	assert.Equal(t, []string{"c"}, again.Selected)
}

func TestLoadStaticErrors(t *testing.T) {
	_, err := LoadStatic(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("items = ["), 0o644))
	_, err = LoadStatic(bad)
	assert.Error(t, err)
}

func TestSnapshotGroupsAndMisses(t *testing.T) {
	s, err := LoadStatic(writeProject(t))
	require.NoError(t, err)
	snap, err := NewSnapshot(s, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, snap.GroupMembers(7))
	assert.Empty(t, snap.GroupMembers(99))

	_, ok := snap.Item("nope")
	assert.False(t, ok)

	r, ok := snap.Region(1)
	require.True(t, ok)
	assert.Equal(t, 30.0, r.End)
}

func TestSnapshotServesStaleUntilRefresh(t *testing.T) {
	s, err := LoadStatic(writeProject(t))
	require.NoError(t, err)
	snap, err := NewSnapshot(s, 16)
	require.NoError(t, err)

	_, ok := snap.Item("c")
	require.True(t, ok)

	s.RemoveItem("c")
	_, ok = snap.Item("c")
	assert.True(t, ok, "cached item should survive until refresh")

	snap.Refresh()
	_, ok = snap.Item("c")
	assert.False(t, ok)
	assert.Len(t, snap.Items(), 2)
}

func TestSnapshotReadsThroughOnMiss(t *testing.T) {
	s := &Static{}
	snap, err := NewSnapshot(s, 16)
	require.NoError(t, err)
	snap.Refresh()

	s.AddItem(MediaItem{ID: "late", Start: 1, Length: 1})
	m, ok := snap.Item("late")
	require.True(t, ok)
	assert.Equal(t, 1.0, m.Start)
}
