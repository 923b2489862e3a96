package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ofertasgt/go-deals-backend/internal/services"
)

// ListSources returns the source catalog. Request headers, body templates,
// and mapping specs never leave the server (they may embed credentials);
// the domain model's JSON tags enforce that.
//
// GET /fuentes
func (h *Handlers) ListSources(c *gin.Context) {
	sources, err := h.sources.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, codeInternalError, "could not load sources", err)
		return
	}
	ok(c, http.StatusOK, gin.H{"fuentes": sources})
}

// ReplaceUserSourcesRequest is the JSON payload for replacing a user's
// source selection.
type ReplaceUserSourcesRequest struct {
	SourceIDs []uint `json:"fuenteIds" binding:"required"`
}

// ReplaceUserSources swaps the user's selected sources. An empty list is
// allowed; the next offer load will auto-heal it back to the full catalog.
//
// PUT /usuario/:telegramId/fuentes
func (h *Handlers) ReplaceUserSources(c *gin.Context) {
	id, valid := telegramID(c)
	if !valid {
		fail(c, http.StatusBadRequest, codeBadRequest, "invalid telegram id", nil)
		return
	}

	var req ReplaceUserSourcesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "invalid source selection payload", err)
		return
	}

	err := h.sources.ReplaceSelection(c.Request.Context(), id, req.SourceIDs)
	switch {
	case errors.Is(err, services.ErrSourceNotFound):
		fail(c, http.StatusNotFound, codeNotFound, "unknown source id", err)
	case err != nil:
		fail(c, http.StatusInternalServerError, codeInternalError, "could not update sources", err)
	default:
		ok(c, http.StatusOK, gin.H{"message": "fuentes actualizadas correctamente"})
	}
}
