package diff

import (
	"reflect"
	"sort"
	"testing"

	"github.com/hyperifyio/sitewatch/internal/snapshot"
)

func snap(digest string, length int) snapshot.Snapshot {
	return snapshot.Snapshot{
		ContentDigest:    digest,
		TextLength:       length,
		PDFReferences:    []snapshot.PDFReference{},
		OutboundLinks:    []string{},
		ImageReferences:  []string{},
		UpdateIndicators: map[string][]string{},
	}
}

func TestCompare_NilPreviousIsInitial(t *testing.T) {
	report := Compare(nil, snap("abc", 10))
	if report == nil || !report.Initial {
		t.Fatalf("missing previous state must yield an initial report, got %+v", report)
	}
	if report.ContentChanged || report.PDFChanges != nil || report.LinkChanges != nil ||
		report.ImageChanges != nil || report.UpdateIndicatorsChanged {
		t.Fatalf("initial report must carry no other detail: %+v", report)
	}
}

func TestCompare_IdenticalIsNil(t *testing.T) {
	prev := snap("abc", 10)
	curr := snap("abc", 10)
	if report := Compare(&prev, curr); report != nil {
		t.Fatalf("identical snapshots must produce no report, got %+v", report)
	}
}

func TestCompare_ContentChange(t *testing.T) {
	prev := snap("abc", 10)
	curr := snap("def", 16)
	report := Compare(&prev, curr)
	if report == nil || !report.ContentChanged {
		t.Fatalf("digest change must set ContentChanged, got %+v", report)
	}
	if report.TextLengthDelta != 6 {
		t.Fatalf("delta = %d, want +6", report.TextLengthDelta)
	}

	shrunk := snap("ghi", 4)
	report = Compare(&curr, shrunk)
	if report.TextLengthDelta != -12 {
		t.Fatalf("delta = %d, want -12", report.TextLengthDelta)
	}
}

func TestCompare_PDFSetDifference(t *testing.T) {
	doc := snapshot.PDFReference{URL: "https://e.com/doc.pdf", Text: "Doc", ShortHash: "aaaa0000"}
	other := snapshot.PDFReference{URL: "https://e.com/new.pdf", Text: "New", ShortHash: "bbbb1111"}

	prev := snap("x", 1)
	prev.PDFReferences = []snapshot.PDFReference{doc}
	curr := snap("x", 1)
	curr.PDFReferences = []snapshot.PDFReference{other}

	report := Compare(&prev, curr)
	if report == nil || report.PDFChanges == nil {
		t.Fatalf("pdf swap must be reported, got %+v", report)
	}
	if len(report.PDFChanges.Added) != 1 || report.PDFChanges.Added[0].ShortHash != other.ShortHash {
		t.Fatalf("added = %+v", report.PDFChanges.Added)
	}
	if len(report.PDFChanges.Removed) != 1 || report.PDFChanges.Removed[0].ShortHash != doc.ShortHash {
		t.Fatalf("removed = %+v", report.PDFChanges.Removed)
	}
	if report.ContentChanged {
		t.Fatalf("unchanged digest must not set ContentChanged")
	}
}

func TestCompare_PDFTextChangeSameURLIsNoChange(t *testing.T) {
	prev := snap("x", 1)
	prev.PDFReferences = []snapshot.PDFReference{{URL: "https://e.com/doc.pdf", Text: "Old text", ShortHash: "aaaa0000"}}
	curr := snap("x", 1)
	curr.PDFReferences = []snapshot.PDFReference{{URL: "https://e.com/doc.pdf", Text: "New text", ShortHash: "aaaa0000"}}

	if report := Compare(&prev, curr); report != nil {
		t.Fatalf("PDF identity is the URL hash; text-only change must not report, got %+v", report)
	}
}

func TestCompare_LinkAndImageSetDifference(t *testing.T) {
	prev := snap("x", 1)
	prev.OutboundLinks = []string{"https://e.com/a", "https://e.com/b"}
	prev.ImageReferences = []string{"https://e.com/1.png"}
	curr := snap("x", 1)
	curr.OutboundLinks = []string{"https://e.com/b", "https://e.com/c"}
	curr.ImageReferences = []string{"https://e.com/1.png", "https://e.com/2.png"}

	report := Compare(&prev, curr)
	if report == nil {
		t.Fatal("expected a report")
	}
	if !reflect.DeepEqual(report.LinkChanges, &SetChanges{
		Added:   []string{"https://e.com/c"},
		Removed: []string{"https://e.com/a"},
	}) {
		t.Fatalf("link changes = %+v", report.LinkChanges)
	}
	if !reflect.DeepEqual(report.ImageChanges, &SetChanges{
		Added: []string{"https://e.com/2.png"},
	}) {
		t.Fatalf("image changes = %+v", report.ImageChanges)
	}
}

func TestCompare_AddedRemovedDisjointAndSorted(t *testing.T) {
	prev := snap("x", 1)
	prev.OutboundLinks = []string{"u3", "u1", "u5"}
	curr := snap("x", 1)
	curr.OutboundLinks = []string{"u5", "u4", "u2"}

	report := Compare(&prev, curr)
	changes := report.LinkChanges
	if !sort.StringsAreSorted(changes.Added) || !sort.StringsAreSorted(changes.Removed) {
		t.Fatalf("added/removed must be sorted: %+v", changes)
	}
	seen := map[string]bool{}
	for _, u := range changes.Added {
		seen[u] = true
	}
	for _, u := range changes.Removed {
		if seen[u] {
			t.Fatalf("%q appears in both added and removed", u)
		}
	}
}

func TestCompare_OrderInsensitiveSets(t *testing.T) {
	prev := snap("x", 1)
	prev.OutboundLinks = []string{"u1", "u2"}
	curr := snap("x", 1)
	curr.OutboundLinks = []string{"u2", "u1"}

	if report := Compare(&prev, curr); report != nil {
		t.Fatalf("set comparison must ignore order, got %+v", report)
	}
}

func TestCompare_UpdateIndicators(t *testing.T) {
	prev := snap("x", 1)
	prev.UpdateIndicators = map[string][]string{snapshot.KindNewIndicators: {"New A"}}
	curr := snap("x", 1)
	curr.UpdateIndicators = map[string][]string{snapshot.KindNewIndicators: {"New B"}}

	report := Compare(&prev, curr)
	if report == nil || !report.UpdateIndicatorsChanged {
		t.Fatalf("indicator change must set the flag, got %+v", report)
	}
}

func TestCompare_NilAndEmptyIndicatorsEqual(t *testing.T) {
	prev := snap("x", 1)
	prev.UpdateIndicators = nil
	curr := snap("x", 1)

	if report := Compare(&prev, curr); report != nil {
		t.Fatalf("nil and empty indicator maps must compare equal, got %+v", report)
	}
}
