package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/rcliao/scriptsync/internal/markdown"
	"github.com/rcliao/scriptsync/internal/model"
)

// SidecarVersion is the version written by Encode.
const SidecarVersion = 3

const sidecarSuffix = ".sync.json"

var (
	// ErrNoMapping means no sidecar and no legacy markers exist.
	ErrNoMapping = errors.New("no fragment mapping")
	// ErrPathMismatch means the stored mapping belongs to another document.
	ErrPathMismatch = errors.New("mapping belongs to a different document")
	// ErrCorrupt means the stored mapping could not be decoded.
	ErrCorrupt = errors.New("corrupt fragment mapping")
)

// SidecarPath returns where the mapping for docPath is stored.
func SidecarPath(docPath string) string { return docPath + sidecarSuffix }

type sidecar struct {
	Version   *int           `json:"version"` // absent in the earliest files
	DocPath   string         `json:"source_document_path"`
	Hash      string         `json:"content_hash,omitempty"`
	Fragments []fragmentJSON `json:"fragments"`
}

// fragmentJSON accepts every persisted fragment shape. Version 2 files carry
// a single item_guid; early version 3 files used item_guids.
type fragmentJSON struct {
	MediaIDs   []string `json:"media_ids"`
	ItemGUIDs  []string `json:"item_guids,omitempty"`
	ItemGUID   string   `json:"item_guid,omitempty"`
	RegionID   *int     `json:"region_id"`
	LineStart  int      `json:"line_start"`
	LineEnd    int      `json:"line_end"`
	Identifier string   `json:"identifier"`
	NodeType   string   `json:"node_type"`
	RowIndex   *int     `json:"row_index"`
	Category   *int     `json:"color_category"`
}

func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Encode serialises m in the current sidecar format.
func Encode(m *model.FragmentMap) ([]byte, error) {
	version := SidecarVersion
	sc := sidecar{
		Version:   &version,
		DocPath:   m.DocPath,
		Hash:      m.ContentHash,
		Fragments: make([]fragmentJSON, 0, len(m.Fragments)),
	}
	for _, f := range m.Fragments {
		fj := fragmentJSON{
			MediaIDs:   f.MediaIDs,
			RegionID:   intPtr(f.RegionID),
			LineStart:  f.LineStart,
			LineEnd:    f.LineEnd,
			Identifier: f.Identifier,
			NodeType:   string(f.NodeType),
			Category:   intPtr(int(f.Category)),
		}
		if f.NodeType == model.NodeTableRow {
			fj.RowIndex = &f.RowIndex
		}
		sc.Fragments = append(sc.Fragments, fj)
	}
	return json.MarshalIndent(sc, "", "  ")
}

// Decode parses a stored mapping and checks that it belongs to docPath.
// Nothing is returned unless the whole mapping is valid.
func Decode(data []byte, docPath string) (*model.FragmentMap, error) {
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	version := 1
	if sc.Version != nil {
		version = *sc.Version
	}
	if version < 1 || version > SidecarVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, version)
	}
	if !model.SamePath(sc.DocPath, docPath) {
		return nil, fmt.Errorf("%w: stored for %q", ErrPathMismatch, sc.DocPath)
	}

	m := &model.FragmentMap{DocPath: docPath, ContentHash: sc.Hash}
	for i, fj := range sc.Fragments {
		f, err := migrateFragment(fj)
		if err != nil {
			return nil, fmt.Errorf("%w: fragment %d: %v", ErrCorrupt, i, err)
		}
		if j := m.Index(f.LineStart); j >= 0 {
			mergeInto(&m.Fragments[j], f)
			continue
		}
		m.Insert(f)
	}
	m.Prune()
	return m, nil
}

// migrateFragment normalises any persisted fragment shape into the
// canonical one.
func migrateFragment(fj fragmentJSON) (model.Fragment, error) {
	if fj.LineStart < 1 || fj.LineEnd < fj.LineStart {
		return model.Fragment{}, fmt.Errorf("bad line range [%d,%d]", fj.LineStart, fj.LineEnd)
	}
	nt := model.NodeType(fj.NodeType)
	if nt == "" {
		nt = model.NodeHeading
	}
	if !model.ValidNodeTypes[nt] {
		return model.Fragment{}, fmt.Errorf("unknown node type %q", fj.NodeType)
	}
	cat := model.Category(deref(fj.Category))
	if cat < model.CategoryUnset || cat > model.CategoryOther {
		cat = model.CategoryUnset
	}

	var ids []string
	add := func(id string) {
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	for _, id := range fj.MediaIDs {
		add(id)
	}
	for _, id := range fj.ItemGUIDs {
		add(id)
	}
	add(fj.ItemGUID)

	return model.Fragment{
		LineStart:  fj.LineStart,
		LineEnd:    fj.LineEnd,
		Identifier: fj.Identifier,
		NodeType:   nt,
		RowIndex:   deref(fj.RowIndex),
		MediaIDs:   ids,
		RegionID:   deref(fj.RegionID),
		Category:   cat,
	}, nil
}

func mergeInto(dst *model.Fragment, src model.Fragment) {
	for _, id := range src.MediaIDs {
		if !dst.HasMedia(id) {
			dst.MediaIDs = append(dst.MediaIDs, id)
		}
	}
	if dst.RegionID == 0 {
		dst.RegionID = src.RegionID
	}
}

// Save writes the mapping to the sidecar of docPath. An empty docPath means
// the bound document.
func (e *Engine) Save(docPath string) error {
	if docPath == "" {
		docPath = e.m.DocPath
	}
	if docPath == "" {
		return errors.New("save: no document path")
	}
	m := e.m.Clone()
	m.DocPath = docPath
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	path := SidecarPath(docPath)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write sidecar: %w", err)
	}
	e.log.Debug().Str("path", path).Int("fragments", len(m.Fragments)).Msg("saved mapping")
	return nil
}

// Load replaces the mapping with the one stored for docPath. It falls back
// to legacy markers embedded in the document when no sidecar exists. On any
// failure the mapping is left empty.
func (e *Engine) Load(docPath string) error {
	e.reset(docPath)

	data, err := os.ReadFile(SidecarPath(docPath))
	if errors.Is(err, fs.ErrNotExist) {
		return e.loadMarkers(docPath)
	}
	if err != nil {
		return fmt.Errorf("read sidecar: %w", err)
	}
	m, err := Decode(data, docPath)
	if err != nil {
		e.log.Warn().Err(err).Str("doc", docPath).Msg("rejected stored mapping")
		return err
	}
	e.install(m)
	return nil
}

func (e *Engine) install(m *model.FragmentMap) {
	e.m = *m
	e.active = nil
	e.ticked = false
	if e.Stale() {
		e.log.Warn().Str("doc", m.DocPath).Msg("mapping was saved for different document content")
	}
}

var (
	markerRe = regexp.MustCompile(`<!--\s*sync:link\s+(.*?)\s*-->`)
	attrRe   = regexp.MustCompile(`(\w+)=("([^"]*)"|\S+)`)
)

func (e *Engine) loadMarkers(docPath string) error {
	data, err := os.ReadFile(docPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNoMapping
		}
		return fmt.Errorf("read document: %w", err)
	}
	m := ParseMarkers(string(data))
	if len(m.Fragments) == 0 {
		return ErrNoMapping
	}
	m.DocPath = docPath
	e.log.Warn().Str("doc", docPath).Int("fragments", len(m.Fragments)).Msg("loaded legacy embedded markers")
	e.install(m)
	return nil
}

// ParseMarkers extracts fragments from legacy "sync:link" comments in a
// document. Malformed markers are skipped.
func ParseMarkers(text string) *model.FragmentMap {
	m := &model.FragmentMap{ContentHash: HashContent(text)}
	var doc *markdown.Document
	for _, match := range markerRe.FindAllStringSubmatch(text, -1) {
		attrs := map[string]string{}
		for _, a := range attrRe.FindAllStringSubmatch(match[1], -1) {
			v := a[2]
			if a[3] != "" || strings.HasPrefix(v, `"`) {
				v = a[3]
			}
			attrs[a[1]] = v
		}
		fj, ok := markerFragment(attrs)
		if !ok {
			continue
		}
		if fj.Identifier == "" {
			if doc == nil {
				doc = markdown.Parse(text)
			}
			if t, ok := TargetAt(doc, fj.LineStart); ok {
				fj.Identifier = t.Identifier
			}
		}
		f, err := migrateFragment(fj)
		if err != nil || !f.Valid() {
			continue
		}
		if j := m.Index(f.LineStart); j >= 0 {
			mergeInto(&m.Fragments[j], f)
			continue
		}
		m.Insert(f)
	}
	return m
}

func markerFragment(attrs map[string]string) (fragmentJSON, bool) {
	var fj fragmentJSON
	lines := attrs["line"]
	if lines == "" {
		return fj, false
	}
	from, to, found := strings.Cut(lines, "-")
	var err error
	if fj.LineStart, err = strconv.Atoi(from); err != nil {
		return fj, false
	}
	fj.LineEnd = fj.LineStart
	if found {
		if fj.LineEnd, err = strconv.Atoi(to); err != nil {
			return fj, false
		}
	}
	if items := attrs["items"]; items != "" {
		fj.MediaIDs = strings.Split(items, ",")
	}
	for key, dst := range map[string]**int{"region": &fj.RegionID, "color": &fj.Category, "row": &fj.RowIndex} {
		if v, ok := attrs[key]; ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fj, false
			}
			*dst = &n
		}
	}
	fj.NodeType = attrs["type"]
	fj.Identifier = attrs["id"]
	return fj, true
}
