package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/rcliao/scriptsync/internal/markdown"
	"github.com/rcliao/scriptsync/internal/model"
)

var folder = cases.Fold()

// Normalize lowercases s, strips punctuation and symbols, and collapses
// whitespace.
func Normalize(s string) string {
	s = folder.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// namesMatch reports whether a heading and a region name refer to the same
// thing: equal, or one contained in the other. Substring matches need the
// shorter side to have at least minLen runes when minLen is positive.
func namesMatch(heading, region string, minLen int) bool {
	if heading == region {
		return true
	}
	var short string
	switch {
	case strings.Contains(heading, region):
		short = region
	case strings.Contains(region, heading):
		short = heading
	default:
		return false
	}
	return minLen <= 0 || utf8.RuneCountInString(short) >= minLen
}

// AutoLinkHeadings links each unlinked named region to the first heading
// whose normalised title matches the region name. The fragment spans the
// heading's section. It returns the number of regions linked.
func (e *Engine) AutoLinkHeadings(doc *markdown.Document) int {
	type candidate struct {
		sec  markdown.Section
		norm string
	}
	var cands []candidate
	for _, s := range markdown.Sections(doc) {
		if n := Normalize(s.Title); n != "" {
			cands = append(cands, candidate{sec: s, norm: n})
		}
	}

	linked := map[int]bool{}
	for _, f := range e.m.Fragments {
		if f.RegionID > 0 {
			linked[f.RegionID] = true
		}
	}

	count := 0
	for _, r := range e.snap.Regions() {
		if linked[r.ID] {
			continue
		}
		name := Normalize(r.Name)
		if name == "" {
			continue
		}
		for _, c := range cands {
			if !namesMatch(c.norm, name, e.minMatch) {
				continue
			}
			if f, ok := e.FindByLineStart(c.sec.StartLine); ok && f.RegionID != 0 {
				continue
			}
			if e.LinkRegion(r.ID, Target{
				LineStart:  c.sec.StartLine,
				LineEnd:    c.sec.EndLine,
				Identifier: c.sec.Title,
				NodeType:   model.NodeHeading,
			}) {
				linked[r.ID] = true
				count++
			}
			break
		}
	}
	e.log.Debug().Int("linked", count).Msg("auto-linked headings")
	return count
}
