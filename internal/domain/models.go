package domain

// Domain contains core models shared by the extractor and its transports.

// ExtractionRequest is the inbound payload for a metadata lookup.
type ExtractionRequest struct {
	URL string `json:"url"`
}

// ExtractionResult is the best-effort summary of a page. Fields are plain
// text and empty when a value could not be found.
type ExtractionResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Empty reports whether no metadata was discovered.
func (r ExtractionResult) Empty() bool {
	return r.Title == "" && r.Description == "" && r.Image == ""
}
