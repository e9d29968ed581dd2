package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cyclecare/internal/domain/analytics"
	"github.com/yanqian/cyclecare/internal/domain/locator"
)

const maxPayloadBytes = 1 << 20

// Handler wires the HTTP transport to domain services.
type Handler struct {
	analyticsSvc analytics.Service
	locatorSvc   locator.Service
	searcher     locator.Searcher
	pages        *pageRenderer
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(analyticsSvc analytics.Service, locatorSvc locator.Service, searcher locator.Searcher, logger *slog.Logger) *Handler {
	return &Handler{
		analyticsSvc: analyticsSvc,
		locatorSvc:   locatorSvc,
		searcher:     searcher,
		pages:        newPageRenderer(),
		logger:       logger.With("component", "http.handler"),
	}
}

// RenderAnalytics builds a dashboard from the posted payload document.
func (h *Handler) RenderAnalytics(c *gin.Context) {
	raw, ok := h.readBody(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.analyticsSvc.Render(c.Request.Context(), raw))
}

// ProfileDashboard renders the stored payload of a profile.
func (h *Handler) ProfileDashboard(c *gin.Context) {
	dash, err := h.analyticsSvc.RenderProfile(c.Request.Context(), profileID(c))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, dash)
}

// SaveProfilePayload stores the payload document of a profile.
func (h *Handler) SaveProfilePayload(c *gin.Context) {
	raw, ok := h.readBody(c)
	if !ok {
		return
	}
	if err := h.analyticsSvc.SavePayload(c.Request.Context(), profileID(c), raw); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ResizeProfile schedules a debounced chart reflow.
func (h *Handler) ResizeProfile(c *gin.Context) {
	if err := h.analyticsSvc.Resize(c.Request.Context(), profileID(c)); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}

func (h *Handler) readBody(c *gin.Context) ([]byte, bool) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes+1))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read request body", err))
		return nil, false
	}
	if len(raw) > maxPayloadBytes {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "payload_too_large", "payload exceeds 1MiB", nil))
		return nil, false
	}
	return raw, true
}

// profileID resolves the :profile parameter; "me" means the token subject.
func profileID(c *gin.Context) string {
	id := c.Param("profile")
	if id == "me" {
		if subject, ok := getSubject(c); ok {
			return subject
		}
	}
	return id
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
