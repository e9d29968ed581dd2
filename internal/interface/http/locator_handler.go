package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cyclecare/internal/domain/locator"
)

// OpenLocatorSession creates a session and starts geolocation.
func (h *Handler) OpenLocatorSession(c *gin.Context) {
	var req locator.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	view, err := h.locatorSvc.Open(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetLocatorSession returns the current view of a session.
func (h *Handler) GetLocatorSession(c *gin.Context) {
	view, err := h.locatorSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// DispatchLocatorEvent applies a client event to a session.
func (h *Handler) DispatchLocatorEvent(c *gin.Context) {
	var cmd locator.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	view, err := h.locatorSvc.Dispatch(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}
