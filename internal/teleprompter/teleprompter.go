// Package teleprompter projects the engine's active fragments into what a
// reader needs on screen: the voice lines to read now, everything else
// playing alongside, and a countdown to the next voice line.
package teleprompter

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/scriptsync/internal/engine"
	"github.com/rcliao/scriptsync/internal/model"
)

// DefaultHold is how long the last primary lines stay up after playback
// moves into a gap.
const DefaultHold = 2 * time.Second

// Frame is one projected teleprompter state.
type Frame struct {
	Primary   []model.Fragment `json:"primary"`
	Secondary []model.Fragment `json:"secondary"`
	// Held is set when Primary is the last-seen set shown during a gap.
	Held      bool       `json:"held,omitempty"`
	Countdown *Countdown `json:"countdown,omitempty"`
}

// Countdown drives the progress bar.
type Countdown struct {
	Target    float64 `json:"target"`
	Remaining float64 `json:"remaining"`
	// Progress runs from 0 to 1 as the target approaches.
	Progress float64 `json:"progress"`
	// Final marks a countdown to the end of the last primary fragment.
	Final bool `json:"final,omitempty"`
}

// Projector keeps the hold state between ticks.
type Projector struct {
	eng  *engine.Engine
	hold time.Duration
	now  func() time.Time
	log  zerolog.Logger

	lastPrimary []model.Fragment
	lastSeen    time.Time
}

// Option configures a Projector.
type Option func(*Projector)

// WithHold sets how long primary lines survive a gap.
func WithHold(d time.Duration) Option { return func(p *Projector) { p.hold = d } }

func WithClock(now func() time.Time) Option { return func(p *Projector) { p.now = now } }

func WithLogger(l zerolog.Logger) Option { return func(p *Projector) { p.log = l } }

// New creates a projector over eng.
func New(eng *engine.Engine, opts ...Option) *Projector {
	p := &Projector{eng: eng, hold: DefaultHold, now: time.Now, log: zerolog.Nop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// IsPrimary reports whether f belongs in the main teleprompter lane.
func IsPrimary(f model.Fragment) bool {
	return f.Category.Effective() == model.CategoryVoice
}

// Update ticks the engine and projects the result.
func (p *Projector) Update(playhead float64, playing bool) Frame {
	r := p.eng.Tick(playhead, playing)
	return p.Project(r.Active, playhead)
}

// Project builds a frame from an active set at the given playhead.
func (p *Projector) Project(active []model.Fragment, playhead float64) Frame {
	var fr Frame
	for _, f := range active {
		if IsPrimary(f) {
			fr.Primary = append(fr.Primary, f)
		} else {
			fr.Secondary = append(fr.Secondary, f)
		}
	}

	now := p.now()
	switch {
	case len(fr.Primary) > 0:
		p.lastPrimary = fr.Primary
		p.lastSeen = now
	case len(p.lastPrimary) > 0 && now.Sub(p.lastSeen) < p.hold:
		fr.Primary = p.lastPrimary
		fr.Held = true
	case len(p.lastPrimary) > 0:
		p.log.Debug().Dur("hold", p.hold).Msg("primary hold expired")
		p.lastPrimary = nil
	}

	fr.Countdown = p.countdown(active, playhead)
	return fr
}

func (p *Projector) countdown(active []model.Fragment, playhead float64) *Countdown {
	next := math.Inf(1)
	prevEnd := math.Inf(-1)
	for _, f := range p.eng.Fragments() {
		if !IsPrimary(f) {
			continue
		}
		iv, ok := p.eng.Interval(f)
		if !ok {
			continue
		}
		if iv.Start > playhead && iv.Start < next {
			next = iv.Start
		}
		if iv.End <= playhead && iv.End > prevEnd {
			prevEnd = iv.End
		}
	}

	if !math.IsInf(next, 1) {
		from := prevEnd
		if math.IsInf(from, -1) {
			from = 0
		}
		return newCountdown(from, next, playhead, false)
	}

	for _, f := range active {
		if !IsPrimary(f) {
			continue
		}
		if iv, ok := p.eng.GroupInterval(f.MediaIDs); ok && iv.End >= playhead {
			return newCountdown(iv.Start, iv.End, playhead, true)
		}
		if iv, ok := p.eng.Interval(f); ok && iv.End >= playhead {
			return newCountdown(iv.Start, iv.End, playhead, true)
		}
	}
	return nil
}

func newCountdown(from, to, playhead float64, final bool) *Countdown {
	c := &Countdown{Target: to, Remaining: to - playhead, Final: final}
	if span := to - from; span > 0 {
		c.Progress = min(max((playhead-from)/span, 0), 1)
	}
	return c
}
