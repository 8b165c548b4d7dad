package markdown

// Section is a heading together with the source lines it governs: from the
// heading line up to the line before the next heading, or the end of the
// document for the last one.
type Section struct {
	Heading   *Heading
	Title     string
	StartLine int
	EndLine   int
}

// Sections splits doc on its headings.
func Sections(doc *Document) []Section {
	hs := Headings(doc)
	out := make([]Section, 0, len(hs))
	for i, h := range hs {
		end := doc.LineEnd
		if i+1 < len(hs) {
			end = hs[i+1].LineStart - 1
		}
		if end < h.LineStart {
			end = h.LineStart
		}
		out = append(out, Section{
			Heading:   h,
			Title:     PlainText(h),
			StartLine: h.LineStart,
			EndLine:   end,
		})
	}
	return out
}

// SectionAt returns the section containing line.
func SectionAt(doc *Document, line int) (Section, bool) {
	for _, s := range Sections(doc) {
		if line >= s.StartLine && line <= s.EndLine {
			return s, true
		}
	}
	return Section{}, false
}
