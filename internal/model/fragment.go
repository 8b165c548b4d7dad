// Package model defines the fragment-map data types shared by the engine,
// the session store and the CLI.
package model

import (
	"slices"
	"sort"
)

// NodeType is the kind of text a fragment was created from.
type NodeType string

const (
	NodeHeading  NodeType = "heading"
	NodeTableRow NodeType = "table_row"
)

// ValidNodeTypes are the node types a fragment may originate from.
var ValidNodeTypes = map[NodeType]bool{
	NodeHeading:  true,
	NodeTableRow: true,
}

// Category is the semantic colour category of a fragment. Zero means unset.
type Category int

const (
	CategoryUnset Category = iota
	CategoryVoice
	CategoryMusic
	CategoryEffect
	CategoryOther
)

// NumCategories is the length of the colour cycle.
const NumCategories = 4

func (c Category) String() string {
	switch c {
	case CategoryVoice:
		return "voice"
	case CategoryMusic:
		return "music"
	case CategoryEffect:
		return "effect"
	case CategoryOther:
		return "other"
	default:
		return "unset"
	}
}

// Effective returns the category used for display; unset counts as Voice.
func (c Category) Effective() Category {
	if c < CategoryVoice || c > CategoryOther {
		return CategoryVoice
	}
	return c
}

// Next returns the following category in the cycle, wrapping Other to Voice.
func (c Category) Next() Category {
	return Category(int(c.Effective())%NumCategories + 1)
}

// Fragment links a span of source lines to timeline media.
type Fragment struct {
	LineStart  int      `json:"line_start"`
	LineEnd    int      `json:"line_end"`
	Identifier string   `json:"identifier"`
	NodeType   NodeType `json:"node_type"`
	RowIndex   int      `json:"row_index,omitempty"`
	MediaIDs   []string `json:"media_ids,omitempty"`
	RegionID   int      `json:"region_id,omitempty"` // legacy; 0 means none
	Category   Category `json:"color_category,omitempty"`
}

// HasMedia reports whether f references the given media item.
func (f *Fragment) HasMedia(id string) bool {
	return slices.Contains(f.MediaIDs, id)
}

// Valid reports whether f still references anything.
func (f *Fragment) Valid() bool {
	return len(f.MediaIDs) > 0 || f.RegionID > 0
}

// Contains reports whether line falls inside f's inclusive range.
func (f *Fragment) Contains(line int) bool {
	return line >= f.LineStart && line <= f.LineEnd
}

// Clone returns a deep copy of f.
func (f *Fragment) Clone() Fragment {
	c := *f
	c.MediaIDs = slices.Clone(f.MediaIDs)
	return c
}

// FragmentMap is the ordered collection of fragments for one document.
type FragmentMap struct {
	DocPath     string     `json:"source_document_path"`
	ContentHash string     `json:"content_hash,omitempty"`
	Fragments   []Fragment `json:"fragments"`
}

// Sort orders fragments ascending by LineStart.
func (m *FragmentMap) Sort() {
	sort.SliceStable(m.Fragments, func(i, j int) bool {
		return m.Fragments[i].LineStart < m.Fragments[j].LineStart
	})
}

// Index returns the position of the fragment keyed by lineStart, or -1.
func (m *FragmentMap) Index(lineStart int) int {
	i := sort.Search(len(m.Fragments), func(i int) bool {
		return m.Fragments[i].LineStart >= lineStart
	})
	if i < len(m.Fragments) && m.Fragments[i].LineStart == lineStart {
		return i
	}
	return -1
}

// Insert places f at its sorted position. The caller guarantees that no
// fragment with the same LineStart exists.
func (m *FragmentMap) Insert(f Fragment) int {
	i := sort.Search(len(m.Fragments), func(i int) bool {
		return m.Fragments[i].LineStart > f.LineStart
	})
	m.Fragments = slices.Insert(m.Fragments, i, f)
	return i
}

// RemoveAt deletes the fragment at index i.
func (m *FragmentMap) RemoveAt(i int) {
	m.Fragments = slices.Delete(m.Fragments, i, i+1)
}

// Prune drops fragments that no longer reference any media or region.
func (m *FragmentMap) Prune() int {
	before := len(m.Fragments)
	m.Fragments = slices.DeleteFunc(m.Fragments, func(f Fragment) bool {
		return !f.Valid()
	})
	return before - len(m.Fragments)
}

// Clone returns a deep copy of m.
func (m *FragmentMap) Clone() *FragmentMap {
	c := &FragmentMap{DocPath: m.DocPath, ContentHash: m.ContentHash}
	c.Fragments = make([]Fragment, len(m.Fragments))
	for i, f := range m.Fragments {
		c.Fragments[i] = f.Clone()
	}
	return c
}
