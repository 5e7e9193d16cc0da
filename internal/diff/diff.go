// Package diff compares two snapshots of the same page and reports what
// changed. Every comparison rule is evaluated independently; a nil report
// means nothing changed.
package diff

import (
	"sort"

	"github.com/hyperifyio/sitewatch/internal/snapshot"
)

// SetChanges holds the two sides of a URL set difference. Added and Removed
// are disjoint and sorted for reproducible output.
type SetChanges struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// PDFChanges carries full PDF records for set-difference results: added
// records come from the current snapshot, removed records from the previous
// one. Sorted by ShortHash.
type PDFChanges struct {
	Added   []snapshot.PDFReference `json:"added,omitempty"`
	Removed []snapshot.PDFReference `json:"removed,omitempty"`
}

// Report describes the differences between two consecutive snapshots. When
// Initial is true no prior snapshot existed and no other field is set.
type Report struct {
	Initial bool `json:"initial,omitempty"`

	ContentChanged  bool `json:"content_changed,omitempty"`
	TextLengthDelta int  `json:"text_length_delta,omitempty"`

	PDFChanges   *PDFChanges `json:"pdf_changes,omitempty"`
	LinkChanges  *SetChanges `json:"link_changes,omitempty"`
	ImageChanges *SetChanges `json:"image_changes,omitempty"`

	UpdateIndicatorsChanged bool `json:"update_indicators_changed,omitempty"`
}

// Compare evaluates current against previous. A nil previous snapshot yields
// exactly an initial report; a nil return means no rule fired and callers
// must treat it as "no news".
func Compare(previous *snapshot.Snapshot, current snapshot.Snapshot) *Report {
	if previous == nil {
		return &Report{Initial: true}
	}

	var report Report
	changed := false

	if previous.ContentDigest != current.ContentDigest {
		report.ContentChanged = true
		report.TextLengthDelta = current.TextLength - previous.TextLength
		changed = true
	}

	if pdf := comparePDFReferences(previous.PDFReferences, current.PDFReferences); pdf != nil {
		report.PDFChanges = pdf
		changed = true
	}
	if links := compareURLSets(previous.OutboundLinks, current.OutboundLinks); links != nil {
		report.LinkChanges = links
		changed = true
	}
	if images := compareURLSets(previous.ImageReferences, current.ImageReferences); images != nil {
		report.ImageChanges = images
		changed = true
	}

	if !indicatorsEqual(previous.UpdateIndicators, current.UpdateIndicators) {
		report.UpdateIndicatorsChanged = true
		changed = true
	}

	if !changed {
		return nil
	}
	return &report
}

func comparePDFReferences(previous, current []snapshot.PDFReference) *PDFChanges {
	prevByHash := map[string]snapshot.PDFReference{}
	for _, ref := range previous {
		prevByHash[ref.ShortHash] = ref
	}
	currByHash := map[string]snapshot.PDFReference{}
	for _, ref := range current {
		currByHash[ref.ShortHash] = ref
	}

	var added, removed []snapshot.PDFReference
	for hash, ref := range currByHash {
		if _, ok := prevByHash[hash]; !ok {
			added = append(added, ref)
		}
	}
	for hash, ref := range prevByHash {
		if _, ok := currByHash[hash]; !ok {
			removed = append(removed, ref)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}
	sort.Slice(added, func(i, j int) bool { return added[i].ShortHash < added[j].ShortHash })
	sort.Slice(removed, func(i, j int) bool { return removed[i].ShortHash < removed[j].ShortHash })
	return &PDFChanges{Added: added, Removed: removed}
}

func compareURLSets(previous, current []string) *SetChanges {
	prevSet := map[string]bool{}
	for _, u := range previous {
		prevSet[u] = true
	}
	currSet := map[string]bool{}
	for _, u := range current {
		currSet[u] = true
	}

	var added, removed []string
	for u := range currSet {
		if !prevSet[u] {
			added = append(added, u)
		}
	}
	for u := range prevSet {
		if !currSet[u] {
			removed = append(removed, u)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}
	sort.Strings(added)
	sort.Strings(removed)
	return &SetChanges{Added: added, Removed: removed}
}

// indicatorsEqual compares indicator maps structurally, treating nil and
// empty as equal so a record written before the field existed does not read
// back as a change.
func indicatorsEqual(a, b map[string][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for kind, av := range a {
		bv, ok := b[kind]
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
	}
	return true
}
