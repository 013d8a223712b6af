package publishers

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"strings"
	"time"

	"github.com/Adda-Baaj/link-meta/internal/domain"
)

// attrURLHash is the message attribute carrying Event.URLHash on brokers.
const attrURLHash = "url_hash"

// Event represents the payload published downstream after a successful extraction.
type Event struct {
	URL         string                  `json:"url"`
	URLHash     string                  `json:"url_hash"`
	Metadata    domain.ExtractionResult `json:"metadata"`
	ExtractedAt time.Time               `json:"extracted_at"`
}

// NewEvent constructs an Event for the given url + result.
func NewEvent(url string, result domain.ExtractionResult) Event {
	url = strings.TrimSpace(url)
	return Event{
		URL:         url,
		URLHash:     HashURL(url),
		Metadata:    result,
		ExtractedAt: time.Now().UTC(),
	}
}

// HashURL returns a stable hex id for u.
func HashURL(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}
