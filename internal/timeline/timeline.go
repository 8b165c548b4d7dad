// Package timeline describes what the sync engine needs from the host DAW:
// media items, named regions, and the transport state.
package timeline

// MediaItem is a host-owned media item on a track.
type MediaItem struct {
	ID     string  `toml:"id" json:"id"`
	Start  float64 `toml:"start" json:"start"`
	Length float64 `toml:"length" json:"length"`
	Track  string  `toml:"track,omitempty" json:"track,omitempty"`
	Group  int     `toml:"group,omitempty" json:"group,omitempty"` // 0 means ungrouped
}

// Interval returns the time span covered by the item.
func (m MediaItem) Interval() Interval {
	return Interval{Start: m.Start, End: m.Start + m.Length}
}

// Region is a named timeline interval.
type Region struct {
	ID    int     `toml:"id" json:"id"`
	Name  string  `toml:"name" json:"name"`
	Start float64 `toml:"start" json:"start"`
	End   float64 `toml:"end" json:"end"`
}

// Interval returns the region bounds.
func (r Region) Interval() Interval {
	return Interval{Start: r.Start, End: r.End}
}

// Interval is a closed time range in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Contains reports whether t lies in iv, both ends inclusive.
func (iv Interval) Contains(t float64) bool {
	return t >= iv.Start && t <= iv.End
}

// Union returns the smallest interval covering iv and o.
func (iv Interval) Union(o Interval) Interval {
	return Interval{Start: min(iv.Start, o.Start), End: max(iv.End, o.End)}
}

// Duration returns End - Start.
func (iv Interval) Duration() float64 { return iv.End - iv.Start }

// Host is the query surface of the DAW project.
type Host interface {
	// Items enumerates all media items.
	Items() []MediaItem
	// Regions enumerates all named regions.
	Regions() []Region
	// Lookup resolves one item by identifier. It fails for deleted items.
	Lookup(id string) (MediaItem, bool)
	// Transport returns the playhead position and whether playback runs.
	Transport() (pos float64, playing bool)
}

// Navigator receives one-way navigation commands.
type Navigator interface {
	SetPlayhead(pos float64)
	SelectItems(ids []string)
}
