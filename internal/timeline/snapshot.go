package timeline

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of item lookups kept by a Snapshot.
const DefaultCacheSize = 4096

// Snapshot is a read-through cache over a Host. It is refreshed on demand
// and may serve stale data; lookups of items that no longer exist simply
// miss.
type Snapshot struct {
	host    Host
	cache   *lru.Cache[string, MediaItem]
	items   []MediaItem
	regions []Region
	byGroup map[int][]string
	loaded  bool
}

// NewSnapshot creates a snapshot over h holding up to size cached items.
func NewSnapshot(h Host, size int) (*Snapshot, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, MediaItem](size)
	if err != nil {
		return nil, err
	}
	return &Snapshot{host: h, cache: cache}, nil
}

// Host returns the underlying host.
func (s *Snapshot) Host() Host { return s.host }

// Refresh re-enumerates items and regions from the host.
func (s *Snapshot) Refresh() {
	s.cache.Purge()
	s.items = s.host.Items()
	s.regions = s.host.Regions()
	s.byGroup = make(map[int][]string)
	for _, m := range s.items {
		s.cache.Add(m.ID, m)
		if m.Group != 0 {
			s.byGroup[m.Group] = append(s.byGroup[m.Group], m.ID)
		}
	}
	s.loaded = true
}

func (s *Snapshot) ensure() {
	if !s.loaded {
		s.Refresh()
	}
}

// Item resolves id, consulting the host on a cache miss.
func (s *Snapshot) Item(id string) (MediaItem, bool) {
	s.ensure()
	if m, ok := s.cache.Get(id); ok {
		return m, true
	}
	m, ok := s.host.Lookup(id)
	if ok {
		s.cache.Add(id, m)
	}
	return m, ok
}

// Items returns the items seen at the last refresh.
func (s *Snapshot) Items() []MediaItem {
	s.ensure()
	return s.items
}

// Regions returns the regions seen at the last refresh.
func (s *Snapshot) Regions() []Region {
	s.ensure()
	return s.regions
}

// Region resolves a region by id.
func (s *Snapshot) Region(id int) (Region, bool) {
	s.ensure()
	for _, r := range s.regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// GroupMembers returns the ids of all items in group g, in host order.
func (s *Snapshot) GroupMembers(g int) []string {
	s.ensure()
	return s.byGroup[g]
}
