package api

import (
	"errors"
	"net/http"

	"github.com/Adda-Baaj/link-meta/internal/extractor"
	"github.com/Adda-Baaj/link-meta/internal/metrics"
)

// errorResponse is the JSON body returned for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// mapExtractError converts an extraction failure into a status code and message.
func mapExtractError(err error) (int, string) {
	switch {
	case errors.Is(err, extractor.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, extractor.ErrTimeout):
		return http.StatusGatewayTimeout, "timed out fetching url"
	case errors.Is(err, extractor.ErrFetch):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, extractor.ErrParse):
		return http.StatusInternalServerError, "failed to parse page"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func outcomeFor(err error) string {
	switch extractor.KindOf(err) {
	case extractor.KindValidation:
		return metrics.OutcomeValidation
	case extractor.KindTimeout:
		return metrics.OutcomeTimeout
	case extractor.KindFetch:
		return metrics.OutcomeFetch
	case extractor.KindParse:
		return metrics.OutcomeParse
	default:
		return metrics.OutcomeInternal
	}
}
