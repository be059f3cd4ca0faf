// Package mapping materializes identifier rows into the per-source lookup
// index used for identity resolution.
package mapping

import (
	"strings"

	"github.com/pulseboard/pulseboard/internal/model"
)

// Entry is one mapping-index value: the identifier exactly as it appears in
// the source system, plus the owning member's display name.
type Entry struct {
	Original   string
	MemberName string
}

// Index holds one normalized-identifier map per mapped source. An Index is
// immutable once built; rebuilds produce a fresh value that the cache swaps
// in atomically.
type Index struct {
	bySource map[model.Source]map[string]Entry
}

// NormalizeKey applies the source's case rule. GitHub logins and Drive email
// addresses are case-insensitive by convention; Slack user IDs and Notion
// UUIDs are case-sensitive and kept as-is.
func NormalizeKey(src model.Source, value string) string {
	switch src {
	case model.SourceGitHub, model.SourceDrive:
		return strings.ToLower(value)
	default:
		return value
	}
}

// NewIndex returns an empty index with every source map present, so lookups
// degrade to "no mapping found" without nil checks.
func NewIndex() *Index {
	by := make(map[model.Source]map[string]Entry, 4)
	for _, src := range model.IdentifierSources() {
		by[src] = make(map[string]Entry)
	}
	return &Index{bySource: by}
}

// BuildIndex scans identifier rows into a fresh index. On a normalized-key
// collision within a source the later row wins; scan order is whatever the
// store returned. Legacy rows that predate the denormalized member name are
// upgraded here so downstream code never branches on shape: an empty
// MemberName becomes the identifier value itself.
func BuildIndex(ids []*model.Identifier) *Index {
	ix := NewIndex()
	for _, id := range ids {
		if id == nil || !model.IsIdentifierSource(id.Source) || id.Value == "" {
			continue
		}
		name := id.MemberName
		if name == "" {
			name = id.Value
		}
		ix.bySource[id.Source][NormalizeKey(id.Source, id.Value)] = Entry{
			Original:   id.Value,
			MemberName: name,
		}
	}
	return ix
}

// Lookup normalizes raw per the source rule and returns the entry on file.
func (ix *Index) Lookup(src model.Source, raw string) (Entry, bool) {
	m, ok := ix.bySource[src]
	if !ok {
		return Entry{}, false
	}
	e, ok := m[NormalizeKey(src, raw)]
	return e, ok
}

// Entries returns the source's map for reverse scans. Callers must treat the
// result as read-only.
func (ix *Index) Entries(src model.Source) map[string]Entry {
	return ix.bySource[src]
}

// Len reports the total number of entries across all sources.
func (ix *Index) Len() int {
	n := 0
	for _, m := range ix.bySource {
		n += len(m)
	}
	return n
}
