package timeline

import (
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// Static is an in-memory Host, loadable from a TOML project file. It stands
// in for the DAW in tests and in the command line harness.
type Static struct {
	Position float64     `toml:"playhead"`
	Playing  bool        `toml:"playing"`
	Selected []string    `toml:"selected,omitempty"`
	Media    []MediaItem `toml:"items"`
	Marks    []Region    `toml:"regions"`
}

// LoadStatic reads a project file.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	var s Static
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse timeline %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the project file back, including navigation state.
func (s *Static) Save(path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Static) Items() []MediaItem { return slices.Clone(s.Media) }
func (s *Static) Regions() []Region  { return slices.Clone(s.Marks) }

func (s *Static) Lookup(id string) (MediaItem, bool) {
	for _, m := range s.Media {
		if m.ID == id {
			return m, true
		}
	}
	return MediaItem{}, false
}

func (s *Static) Transport() (float64, bool) { return s.Position, s.Playing }

func (s *Static) SetPlayhead(pos float64)   { s.Position = pos }
func (s *Static) SelectItems(ids []string) { s.Selected = slices.Clone(ids) }

// AddItem appends or replaces an item.
func (s *Static) AddItem(m MediaItem) {
	for i := range s.Media {
		if s.Media[i].ID == m.ID {
			s.Media[i] = m
			return
		}
	}
	s.Media = append(s.Media, m)
}

// RemoveItem deletes an item, as a user would in the DAW.
func (s *Static) RemoveItem(id string) {
	s.Media = slices.DeleteFunc(s.Media, func(m MediaItem) bool { return m.ID == id })
}

// AddRegion appends a region.
func (s *Static) AddRegion(r Region) { s.Marks = append(s.Marks, r) }

var (
	_ Host      = (*Static)(nil)
	_ Navigator = (*Static)(nil)
)
