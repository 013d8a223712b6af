package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/Adda-Baaj/link-meta/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// lookup probes one metadata location and returns its raw value.
type lookup func(doc *goquery.Document) string

// Fallback chains, most authoritative source first.
var (
	titleChain = []lookup{
		metaTag("og:title"),
		metaTag("twitter:title"),
		titleElement,
	}
	descriptionChain = []lookup{
		metaTag("og:description"),
		metaTag("twitter:description"),
		metaTag("description"),
	}
	// No <img> fallback: arbitrary page images are too often unrelated.
	imageChain = []lookup{
		metaTag("og:image"),
		metaTag("twitter:image"),
	}
)

// metaAttrs lists the attributes a meta key may live in, in lookup order.
var metaAttrs = []string{"property", "name"}

func parseDocument(body []byte, contentType string) (*goquery.Document, error) {
	var r io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	} else {
		r = bytes.NewReader(body)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func summarize(doc *goquery.Document) domain.ExtractionResult {
	return domain.ExtractionResult{
		Title:       firstNonEmpty(doc, titleChain),
		Description: firstNonEmpty(doc, descriptionChain),
		Image:       firstNonEmpty(doc, imageChain),
	}
}

// firstNonEmpty evaluates chain in order and stops at the first value that
// is non-empty after trimming.
func firstNonEmpty(doc *goquery.Document, chain []lookup) string {
	for _, fn := range chain {
		if v := strings.TrimSpace(fn(doc)); v != "" {
			return v
		}
	}
	return ""
}

func metaTag(key string) lookup {
	return func(doc *goquery.Document) string {
		return metaContent(doc, key)
	}
}

// metaContent returns the first non-blank content of a meta tag whose
// property (then name) attribute equals key, ignoring case.
func metaContent(doc *goquery.Document, key string) string {
	metas := doc.Find("meta[content]")
	for _, attr := range metaAttrs {
		var found string
		metas.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v, ok := s.Attr(attr)
			if !ok || !strings.EqualFold(strings.TrimSpace(v), key) {
				return true
			}
			content, _ := s.Attr("content")
			if strings.TrimSpace(content) == "" {
				return true
			}
			found = content
			return false
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// titleElement reads the document <title>, skipping titles of inline SVGs.
func titleElement(doc *goquery.Document) string {
	var title string
	doc.Find("title").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.ParentsFiltered("svg").Length() > 0 {
			return true
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			title = text
			return false
		}
		return true
	})
	return title
}
