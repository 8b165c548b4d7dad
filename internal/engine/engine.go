// Package engine keeps the links between document fragments and timeline
// media, and works out which fragments are active under the playhead.
//
// An Engine is owned by a single goroutine: the host's update callback.
// None of its methods lock.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/scriptsync/internal/model"
	"github.com/rcliao/scriptsync/internal/timeline"
)

// DefaultThrottle bounds Tick recomputation to roughly 30Hz.
const DefaultThrottle = 33 * time.Millisecond

// Target describes the text span a fragment is created for.
type Target struct {
	LineStart  int            `json:"line_start"`
	LineEnd    int            `json:"line_end"`
	Identifier string         `json:"identifier"`
	NodeType   model.NodeType `json:"node_type"`
	RowIndex   int            `json:"row_index,omitempty"`
}

func (t Target) fragment() model.Fragment {
	end := t.LineEnd
	if end < t.LineStart {
		end = t.LineStart
	}
	nt := t.NodeType
	if nt == "" {
		nt = model.NodeHeading
	}
	return model.Fragment{
		LineStart:  t.LineStart,
		LineEnd:    end,
		Identifier: t.Identifier,
		NodeType:   nt,
		RowIndex:   t.RowIndex,
	}
}

// Engine is the fragment-to-media synchronisation engine.
type Engine struct {
	snap *timeline.Snapshot
	m    model.FragmentMap
	log  zerolog.Logger

	docHash    string
	now        func() time.Time
	throttle   time.Duration
	autoScroll bool
	minMatch   int

	ticked   bool
	lastTick time.Time
	active   []model.Fragment
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithClock replaces time.Now for throttling.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithThrottle sets the minimum interval between Tick recomputations.
func WithThrottle(d time.Duration) Option { return func(e *Engine) { e.throttle = d } }

// WithAutoScroll sets the auto-scroll flag reported by Tick.
func WithAutoScroll(on bool) Option { return func(e *Engine) { e.autoScroll = on } }

// WithMinMatchLength sets the shortest normalised name that may match by
// substring during auto-linking. Zero disables the limit.
func WithMinMatchLength(n int) Option { return func(e *Engine) { e.minMatch = n } }

// New creates an engine reading media through snap.
func New(snap *timeline.Snapshot, opts ...Option) *Engine {
	e := &Engine{
		snap:       snap,
		log:        zerolog.Nop(),
		now:        time.Now,
		throttle:   DefaultThrottle,
		autoScroll: true,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Snapshot returns the timeline snapshot the engine reads from.
func (e *Engine) Snapshot() *timeline.Snapshot { return e.snap }

// SetAutoScroll toggles the auto-scroll flag at runtime.
func (e *Engine) SetAutoScroll(on bool) { e.autoScroll = on }

// HashContent returns the content hash stored alongside a fragment map.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// SetDocument binds the engine to a source document. Switching to a
// different path drops the current mapping.
func (e *Engine) SetDocument(path, text string) {
	if e.m.DocPath != "" && e.m.DocPath != path {
		e.reset(path)
	}
	e.m.DocPath = path
	e.docHash = HashContent(text)
	if len(e.m.Fragments) == 0 {
		e.m.ContentHash = e.docHash
	}
}

// DocPath returns the path of the bound document.
func (e *Engine) DocPath() string { return e.m.DocPath }

// Stale reports whether the mapping was built against different content
// than the document last passed to SetDocument.
func (e *Engine) Stale() bool {
	return e.m.ContentHash != "" && e.docHash != "" && e.m.ContentHash != e.docHash
}

func (e *Engine) reset(path string) {
	e.m = model.FragmentMap{DocPath: path}
	e.active = nil
	e.ticked = false
}

func (e *Engine) touch() {
	if e.docHash != "" {
		e.m.ContentHash = e.docHash
	}
}

// Fragments returns a copy of the mapping in line order.
func (e *Engine) Fragments() []model.Fragment {
	return e.Map().Fragments
}

// Map returns a deep copy of the fragment map.
func (e *Engine) Map() *model.FragmentMap { return e.m.Clone() }

// Restore replaces the mapping with m, sorting and pruning it.
func (e *Engine) Restore(m *model.FragmentMap) {
	c := m.Clone()
	c.Sort()
	c.Prune()
	e.m = *c
	e.active = nil
	e.ticked = false
}

// Link adds mediaID to the fragment keyed by t.LineStart, creating the
// fragment if needed. It reports whether anything changed.
func (e *Engine) Link(mediaID string, t Target) bool {
	if mediaID == "" {
		return false
	}
	i := e.m.Index(t.LineStart)
	if i < 0 {
		i = e.m.Insert(t.fragment())
	}
	f := &e.m.Fragments[i]
	if f.HasMedia(mediaID) {
		return false
	}
	f.MediaIDs = append(f.MediaIDs, mediaID)
	e.touch()
	e.log.Debug().Int("line", f.LineStart).Str("media", mediaID).Msg("linked")
	return true
}

// LinkGroup links every member of mediaID's group to t and returns how many
// links were added.
func (e *Engine) LinkGroup(mediaID string, t Target) int {
	n := 0
	for _, id := range e.ResolveGroup(mediaID) {
		if e.Link(id, t) {
			n++
		}
	}
	return n
}

// LinkRegion attaches a named region to the fragment keyed by t.LineStart.
// A fragment holds at most one region; an existing one is kept.
func (e *Engine) LinkRegion(regionID int, t Target) bool {
	if regionID <= 0 {
		return false
	}
	i := e.m.Index(t.LineStart)
	if i < 0 {
		i = e.m.Insert(t.fragment())
	}
	f := &e.m.Fragments[i]
	if f.RegionID != 0 {
		return false
	}
	f.RegionID = regionID
	e.touch()
	e.log.Debug().Int("line", f.LineStart).Int("region", regionID).Msg("linked region")
	return true
}

// UnlinkOne removes mediaID from the fragment at lineStart. A fragment left
// without references is removed.
func (e *Engine) UnlinkOne(lineStart int, mediaID string) bool {
	i := e.m.Index(lineStart)
	if i < 0 {
		return false
	}
	f := &e.m.Fragments[i]
	j := slices.Index(f.MediaIDs, mediaID)
	if j < 0 {
		return false
	}
	f.MediaIDs = slices.Delete(f.MediaIDs, j, j+1)
	if !f.Valid() {
		e.m.RemoveAt(i)
	}
	e.touch()
	e.log.Debug().Int("line", lineStart).Str("media", mediaID).Msg("unlinked")
	return true
}

// UnlinkGroup removes every member of mediaID's group from the fragment.
func (e *Engine) UnlinkGroup(lineStart int, mediaID string) int {
	n := 0
	for _, id := range e.ResolveGroup(mediaID) {
		if e.UnlinkOne(lineStart, id) {
			n++
		}
	}
	return n
}

// UnlinkAll removes the fragment at lineStart.
func (e *Engine) UnlinkAll(lineStart int) bool {
	i := e.m.Index(lineStart)
	if i < 0 {
		return false
	}
	e.m.RemoveAt(i)
	e.touch()
	e.log.Debug().Int("line", lineStart).Msg("unlinked fragment")
	return true
}

// FindByLineStart looks a fragment up by its key.
func (e *Engine) FindByLineStart(lineStart int) (model.Fragment, bool) {
	i := e.m.Index(lineStart)
	if i < 0 {
		return model.Fragment{}, false
	}
	return e.m.Fragments[i].Clone(), true
}

// FindContainingLine returns the first fragment, in line order, whose range
// contains line.
func (e *Engine) FindContainingLine(line int) (model.Fragment, bool) {
	for i := range e.m.Fragments {
		if e.m.Fragments[i].Contains(line) {
			return e.m.Fragments[i].Clone(), true
		}
	}
	return model.Fragment{}, false
}

// CycleColorCategory advances the fragment's colour category.
func (e *Engine) CycleColorCategory(lineStart int) (model.Category, bool) {
	i := e.m.Index(lineStart)
	if i < 0 {
		return model.CategoryUnset, false
	}
	f := &e.m.Fragments[i]
	f.Category = f.Category.Next()
	e.touch()
	e.log.Debug().Int("line", lineStart).Stringer("category", f.Category).Msg("cycled colour")
	return f.Category, true
}
