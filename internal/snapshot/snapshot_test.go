package snapshot

import (
	"strings"
	"testing"
)

const baseURL = "https://example.com/page"

func TestExtract_NoiseTagsExcludedFromText(t *testing.T) {
	html := `<!doctype html>
	<html>
	  <body>
	    <script>var x = 1;</script>
	    <style>.a { color: red; }</style>
	    <nav>Navigation here</nav>
	    <header>Header here</header>
	    <p>Visible content</p>
	    <footer>Footer here</footer>
	  </body>
	</html>`

	clean := Extract(baseURL, []byte(`<html><body><p>Visible content</p></body></html>`))
	noisy := Extract(baseURL, []byte(html))

	if noisy.ContentDigest != clean.ContentDigest {
		t.Fatalf("digest should ignore script/style/nav/header/footer content")
	}
	if noisy.TextLength != len("Visible content") {
		t.Fatalf("text length = %d, want %d", noisy.TextLength, len("Visible content"))
	}
}

func TestExtract_WhitespaceNormalization(t *testing.T) {
	a := Extract(baseURL, []byte("<p>Hello   World</p>"))
	b := Extract(baseURL, []byte("<p>\n\tHello\nWorld  </p>"))
	if a.ContentDigest != b.ContentDigest {
		t.Fatalf("whitespace-only markup differences must not change the digest")
	}
	if a.TextLength != len("Hello World") {
		t.Fatalf("text length = %d, want %d", a.TextLength, len("Hello World"))
	}

	c := Extract(baseURL, []byte("<p>Hello Worlds</p>"))
	if c.ContentDigest == a.ContentDigest {
		t.Fatalf("visible text change must change the digest")
	}
}

func TestExtract_PDFReferences(t *testing.T) {
	html := `<html><body>
	  <a href="/doc.pdf" title="Annual report">Doc</a>
	  <a href="/download?format=PDF">Export</a>
	  <a href="/other.html">Other</a>
	</body></html>`

	snap := Extract(baseURL, []byte(html))
	if len(snap.PDFReferences) != 2 {
		t.Fatalf("got %d PDF references, want 2: %+v", len(snap.PDFReferences), snap.PDFReferences)
	}
	ref := snap.PDFReferences[0]
	if ref.URL != "https://example.com/doc.pdf" {
		t.Fatalf("pdf url = %q", ref.URL)
	}
	if ref.Text != "Doc" {
		t.Fatalf("pdf text = %q", ref.Text)
	}
	if ref.Title != "Annual report" {
		t.Fatalf("pdf title = %q", ref.Title)
	}
	if len(ref.ShortHash) != 8 {
		t.Fatalf("short hash = %q, want 8 hex chars", ref.ShortHash)
	}
	if ref.ShortHash != ShortHashOf(ref.URL) {
		t.Fatalf("short hash must be derived from the absolute URL")
	}

	// PDF anchors must not leak into the outbound link set.
	for _, link := range snap.OutboundLinks {
		if strings.Contains(strings.ToLower(link), "pdf") {
			t.Fatalf("pdf link %q also recorded as outbound link", link)
		}
	}
}

func TestExtract_PDFInsideNavStillCounts(t *testing.T) {
	html := `<html><body><nav><a href="/nav.pdf">Nav PDF</a></nav><p>Body</p></body></html>`
	snap := Extract(baseURL, []byte(html))
	if len(snap.PDFReferences) != 1 {
		t.Fatalf("PDF linked from nav should still be recorded, got %+v", snap.PDFReferences)
	}
	noNav := Extract(baseURL, []byte(`<html><body><p>Body</p></body></html>`))
	if snap.ContentDigest != noNav.ContentDigest {
		t.Fatalf("nav text must stay out of the digest even when it holds a PDF link")
	}
}

func TestExtract_LinkFilteringAndResolution(t *testing.T) {
	html := `<html><body>
	  <a href="relative/path">Relative</a>
	  <a href="https://other.example.org/abs">Absolute</a>
	  <a href="mailto:someone@example.com">Mail</a>
	  <a href="tel:+123456">Phone</a>
	  <a href="javascript:void(0)">JS</a>
	  <a href="JAVASCRIPT:alert(1)">JS upper</a>
	  <a href="relative/path">Duplicate</a>
	</body></html>`

	snap := Extract(baseURL, []byte(html))
	want := map[string]bool{
		"https://example.com/relative/path": true,
		"https://other.example.org/abs":     true,
	}
	if len(snap.OutboundLinks) != len(want) {
		t.Fatalf("links = %v, want %d entries", snap.OutboundLinks, len(want))
	}
	for _, link := range snap.OutboundLinks {
		if !want[link] {
			t.Fatalf("unexpected link %q", link)
		}
	}
}

func TestExtract_Images(t *testing.T) {
	html := `<html><body>
	  <img src="/logo.png">
	  <img src="/logo.png">
	  <img src="https://cdn.example.net/pic.jpg" alt="pic">
	  <img alt="no source">
	</body></html>`

	snap := Extract(baseURL, []byte(html))
	if len(snap.ImageReferences) != 2 {
		t.Fatalf("images = %v, want 2 deduplicated entries", snap.ImageReferences)
	}
}

func TestExtract_UpdateIndicators(t *testing.T) {
	html := `<html><body>
	  <span class="last-updated">2026-08-01</span>
	  <div class="post-date">2026-07-15</div>
	  <p>New release out now</p>
	  <p>更新しました</p>
	  <p>Version 2.0 available</p>
	</body></html>`

	snap := Extract(baseURL, []byte(html))
	dates := snap.UpdateIndicators[KindDateElements]
	if len(dates) != 2 {
		t.Fatalf("date elements = %v, want 2", dates)
	}
	news := snap.UpdateIndicators[KindNewIndicators]
	if len(news) < 2 {
		t.Fatalf("new indicators = %v, want the English and Japanese fragments", news)
	}
	versions := snap.UpdateIndicators[KindVersionIndicators]
	if len(versions) != 1 || !strings.Contains(versions[0], "Version 2.0") {
		t.Fatalf("version indicators = %v", versions)
	}
}

func TestExtract_IndicatorCaps(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 20; i++ {
		b.WriteString("<p>new item</p>")
	}
	b.WriteString("</body></html>")

	snap := Extract(baseURL, []byte(b.String()))
	if got := len(snap.UpdateIndicators[KindNewIndicators]); got != newIndicatorsCap {
		t.Fatalf("new indicators capped at %d, got %d", newIndicatorsCap, got)
	}
}

func TestExtract_FullWidthIndicatorMatches(t *testing.T) {
	snap := Extract(baseURL, []byte("<html><body><p>ＮＥＷ</p><p>ｖ２</p></body></html>"))
	if len(snap.UpdateIndicators[KindNewIndicators]) != 1 {
		t.Fatalf("full-width NEW should match: %v", snap.UpdateIndicators)
	}
	if len(snap.UpdateIndicators[KindVersionIndicators]) != 1 {
		t.Fatalf("full-width v2 should match: %v", snap.UpdateIndicators)
	}
}

func TestExtract_EmptyAndMalformedMarkup(t *testing.T) {
	for _, markup := range []string{"", "<div><<<>", "not html at all"} {
		snap := Extract(baseURL, []byte(markup))
		if snap.PDFReferences == nil || snap.OutboundLinks == nil ||
			snap.ImageReferences == nil || snap.UpdateIndicators == nil {
			t.Fatalf("collections must be non-nil for markup %q", markup)
		}
		if snap.ContentDigest == "" {
			t.Fatalf("digest must be set even for empty content")
		}
		if snap.CapturedAt.IsZero() {
			t.Fatalf("captured-at must be stamped")
		}
	}
}

func TestExtract_BadBaseURLDropsReferences(t *testing.T) {
	snap := Extract("://not-a-url", []byte(`<a href="relative">x</a>`))
	if len(snap.OutboundLinks) != 0 {
		t.Fatalf("relative links must be dropped when the base URL is unusable: %v", snap.OutboundLinks)
	}
}
