package engine

import (
	"slices"

	"github.com/rcliao/scriptsync/internal/timeline"
)

// ResolveGroup returns every item sharing mediaID's group, mediaID included.
// Ungrouped or unknown items yield a single-element slice.
func (e *Engine) ResolveGroup(mediaID string) []string {
	m, ok := e.snap.Item(mediaID)
	if !ok || m.Group == 0 {
		return []string{mediaID}
	}
	members := slices.Clone(e.snap.GroupMembers(m.Group))
	if !slices.Contains(members, mediaID) {
		members = append([]string{mediaID}, members...)
	}
	return members
}

// GroupInterval returns the earliest start and latest end among the
// resolvable items in ids.
func (e *Engine) GroupInterval(ids []string) (timeline.Interval, bool) {
	var iv timeline.Interval
	found := false
	for _, id := range ids {
		m, ok := e.snap.Item(id)
		if !ok {
			continue
		}
		if !found {
			iv, found = m.Interval(), true
			continue
		}
		iv = iv.Union(m.Interval())
	}
	return iv, found
}
