package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Adda-Baaj/link-meta/internal/domain"
	"github.com/Adda-Baaj/link-meta/internal/logger"
	"github.com/Adda-Baaj/link-meta/internal/metrics"

	"github.com/labstack/echo/v4"
)

// ExtractHandler handles POST /api/extract.
type ExtractHandler struct {
	extractor Extractor
	notifier  Notifier
	metrics   *metrics.Metrics
	log       logger.Logger
}

// NewExtractHandler creates a new extract handler. notifier and m may be nil.
func NewExtractHandler(ex Extractor, notifier Notifier, m *metrics.Metrics, log logger.Logger) *ExtractHandler {
	return &ExtractHandler{
		extractor: ex,
		notifier:  notifier,
		metrics:   m,
		log:       logger.Ensure(log),
	}
}

// Handle decodes {"url": ...} and returns the page summary.
func (h *ExtractHandler) Handle(c echo.Context) error {
	var req domain.ExtractionRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	start := time.Now()
	result, err := h.extractor.Extract(c.Request().Context(), req.URL)
	elapsed := time.Since(start)
	if err != nil {
		h.metrics.RecordExtraction(outcomeFor(err), elapsed)
		status, msg := mapExtractError(err)
		h.log.WarnObj("metadata extraction failed", "extract_error", map[string]any{
			"url":        req.URL,
			"status":     status,
			"error":      err.Error(),
			"elapsed_ms": elapsed.Milliseconds(),
		})
		return c.JSON(status, errorResponse{Error: msg})
	}

	h.metrics.RecordExtraction(metrics.OutcomeOK, elapsed)
	h.log.DebugObj("metadata extracted", "extract_result", map[string]any{
		"url":        req.URL,
		"empty":      result.Empty(),
		"elapsed_ms": elapsed.Milliseconds(),
	})

	if h.notifier != nil {
		h.notifier.Notify(req.URL, result)
	}

	return c.JSON(http.StatusOK, result)
}
