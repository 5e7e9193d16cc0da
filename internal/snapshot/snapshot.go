// Package snapshot turns raw page markup into a normalized, comparable
// record of the page's observable content: a digest of the visible text plus
// the sets of outbound links, images, PDF references, and update-indicator
// text fragments.
package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/width"
)

// Indicator map keys. Each category is capped so that noisy pages cannot
// bloat the stored record.
const (
	KindDateElements      = "date_elements"
	KindNewIndicators     = "new_indicators"
	KindVersionIndicators = "version_indicators"

	dateElementsCap      = 5
	newIndicatorsCap     = 10
	versionIndicatorsCap = 5
)

// PDFReference identifies one PDF link found on a page. ShortHash is a
// truncated hash of the absolute URL and serves as the reference's stable
// identity: link text and title may change without changing the identity.
type PDFReference struct {
	URL       string `json:"url"`
	Text      string `json:"text"`
	Title     string `json:"title,omitempty"`
	ShortHash string `json:"short_hash"`
}

// Snapshot is the state of one monitored page at one point in time. All URL
// fields hold absolute URLs; collections are deduplicated. Snapshots are
// created fresh on every cycle and never mutated.
type Snapshot struct {
	CapturedAt       time.Time           `json:"captured_at"`
	ContentDigest    string              `json:"content_digest"`
	TextLength       int                 `json:"text_length"`
	PDFReferences    []PDFReference      `json:"pdf_references"`
	OutboundLinks    []string            `json:"outbound_links"`
	ImageReferences  []string            `json:"image_references"`
	UpdateIndicators map[string][]string `json:"update_indicators"`
}

// Tags whose subtrees are structural noise, not content.
const noiseSelector = "script, style, nav, footer, header"

var (
	dateClassRe    = regexp.MustCompile(`(?i)date|time|updated|modified`)
	newTextRe      = regexp.MustCompile(`(?i)new|updated|追加|更新|変更`)
	versionTextRe  = regexp.MustCompile(`(?i)version|v\d+|バージョン`)
	skippedSchemes = []string{"javascript:", "mailto:", "tel:"}
)

// Extract parses markup and builds a Snapshot. Parsing is best effort:
// malformed or empty markup yields a snapshot with empty collections, never
// an error. baseURL is the page's own URL and anchors relative references;
// references that cannot be resolved against it are dropped.
func Extract(baseURL string, markup []byte) Snapshot {
	snap := Snapshot{
		CapturedAt:       time.Now().UTC(),
		PDFReferences:    []PDFReference{},
		OutboundLinks:    []string{},
		ImageReferences:  []string{},
		UpdateIndicators: map[string][]string{},
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		snap.ContentDigest = digest("")
		return snap
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	// PDF references are collected before noise removal so that a PDF linked
	// from a nav or footer still counts.
	snap.PDFReferences = extractPDFReferences(doc, base)

	doc.Find(noiseSelector).Remove()

	text := normalizeText(doc.Text())
	snap.ContentDigest = digest(text)
	snap.TextLength = utf8.RuneCountInString(text)

	snap.OutboundLinks = extractLinks(doc, base)
	snap.ImageReferences = extractImages(doc, base)
	snap.UpdateIndicators = extractUpdateIndicators(doc)

	return snap
}

// normalizeText collapses every whitespace run to a single space and trims
// the ends. The content digest is defined over this form, so raw-markup
// whitespace churn does not register as a change.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func digest(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// ShortHashOf returns the stable identity for an absolute PDF URL: the first
// 8 hex characters of its hash.
func ShortHashOf(absoluteURL string) string {
	sum := sha256.Sum256([]byte(absoluteURL))
	return hex.EncodeToString(sum[:])[:8]
}

// resolve turns a reference attribute into an absolute URL, or "" when the
// reference is unusable.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if !u.IsAbs() {
		return ""
	}
	return u.String()
}

func isPDFReference(href string) bool {
	h := strings.ToLower(href)
	return strings.HasSuffix(h, ".pdf") || strings.Contains(h, "pdf")
}

func isSkippedScheme(absoluteURL string) bool {
	lower := strings.ToLower(absoluteURL)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

func extractPDFReferences(doc *goquery.Document, base *url.URL) []PDFReference {
	refs := []PDFReference{}
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !isPDFReference(href) {
			return
		}
		abs := resolve(base, href)
		if abs == "" {
			return
		}
		ref := PDFReference{
			URL:       abs,
			Text:      strings.TrimSpace(sel.Text()),
			ShortHash: ShortHashOf(abs),
		}
		if title, ok := sel.Attr("title"); ok {
			ref.Title = title
		}
		if seen[ref.ShortHash] {
			return
		}
		seen[ref.ShortHash] = true
		refs = append(refs, ref)
	})
	return refs
}

func extractLinks(doc *goquery.Document, base *url.URL) []string {
	links := []string{}
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if isPDFReference(href) {
			return // already captured as a PDF reference
		}
		abs := resolve(base, href)
		if abs == "" || isSkippedScheme(abs) || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	return links
}

func extractImages(doc *goquery.Document, base *url.URL) []string {
	images := []string{}
	seen := map[string]bool{}
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		abs := resolve(base, src)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		images = append(images, abs)
	})
	return images
}

// extractUpdateIndicators gathers weak recency signals: dated elements by
// class name, "new/updated" badges, and version strings. Matching is done on
// width-folded text so full-width variants on Japanese pages count; the
// stored fragment keeps its original form. Empty categories are omitted.
func extractUpdateIndicators(doc *goquery.Document) map[string][]string {
	indicators := map[string][]string{}

	dates := []string{}
	doc.Find("time, span, div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, ok := sel.Attr("class")
		if !ok || !dateClassRe.MatchString(class) {
			return true
		}
		dates = append(dates, strings.TrimSpace(sel.Text()))
		return len(dates) < dateElementsCap
	})
	if len(dates) > 0 {
		indicators[KindDateElements] = dates
	}

	news := []string{}
	versions := []string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(news) >= newIndicatorsCap && len(versions) >= versionIndicatorsCap {
			return
		}
		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				folded := width.Fold.String(trimmed)
				if len(news) < newIndicatorsCap && newTextRe.MatchString(folded) {
					news = append(news, trimmed)
				}
				if len(versions) < versionIndicatorsCap && versionTextRe.MatchString(folded) {
					versions = append(versions, trimmed)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}
	if len(news) > 0 {
		indicators[KindNewIndicators] = news
	}
	if len(versions) > 0 {
		indicators[KindVersionIndicators] = versions
	}

	return indicators
}
