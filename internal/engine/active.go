package engine

import (
	"slices"

	"github.com/rcliao/scriptsync/internal/model"
	"github.com/rcliao/scriptsync/internal/timeline"
)

// TickResult is the outcome of one Tick.
type TickResult struct {
	Changed    bool
	Active     []model.Fragment
	AutoScroll bool
}

// ActiveFragments returns, in line order, every fragment with a resolved
// media or region interval containing t. Nothing is active while stopped.
// References that no longer resolve are skipped.
func (e *Engine) ActiveFragments(t float64, playing bool) []model.Fragment {
	if !playing {
		return nil
	}
	var out []model.Fragment
	for i := range e.m.Fragments {
		f := &e.m.Fragments[i]
		if e.isActive(f, t) {
			out = append(out, f.Clone())
		}
	}
	return out
}

func (e *Engine) isActive(f *model.Fragment, t float64) bool {
	for _, id := range f.MediaIDs {
		if m, ok := e.snap.Item(id); ok && m.Interval().Contains(t) {
			return true
		}
	}
	if f.RegionID > 0 {
		if r, ok := e.snap.Region(f.RegionID); ok && r.Interval().Contains(t) {
			return true
		}
	}
	return false
}

// Tick recomputes the active set at most once per throttle interval. Calls
// inside the interval return the cached set with Changed false.
func (e *Engine) Tick(t float64, playing bool) TickResult {
	now := e.now()
	if e.ticked && now.Sub(e.lastTick) < e.throttle {
		return TickResult{Active: slices.Clone(e.active), AutoScroll: e.autoScroll}
	}
	e.ticked = true
	e.lastTick = now

	active := e.ActiveFragments(t, playing)
	changed := !sameLines(active, e.active)
	e.active = active
	if changed {
		e.log.Debug().Float64("t", t).Int("active", len(active)).Msg("active fragments changed")
	}
	return TickResult{Changed: changed, Active: slices.Clone(active), AutoScroll: e.autoScroll}
}

func sameLines(a, b []model.Fragment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].LineStart != b[i].LineStart {
			return false
		}
	}
	return true
}

// Interval returns the combined time span of everything f references.
func (e *Engine) Interval(f model.Fragment) (timeline.Interval, bool) {
	iv, ok := e.GroupInterval(f.MediaIDs)
	if f.RegionID > 0 {
		if r, found := e.snap.Region(f.RegionID); found {
			if ok {
				iv = iv.Union(r.Interval())
			} else {
				iv, ok = r.Interval(), true
			}
		}
	}
	return iv, ok
}
