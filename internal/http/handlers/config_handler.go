package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ofertasgt/go-deals-backend/internal/domain"
)

// SaveConfigRequest is the JSON payload for saving a user's configuration
// in one call: profile name, offer filters, and category selection. It is
// the shape submitted by the category picker web app.
type SaveConfigRequest struct {
	Name            string  `json:"nombre" binding:"required,max=128"`
	DiscountPercent int     `json:"porcentajeDescuento" binding:"min=0,max=100"`
	MinPrice        float64 `json:"precioMin" binding:"min=0"`
	MaxPrice        float64 `json:"precioMax" binding:"min=0"`
	SelectedIDs     []uint  `json:"selectedIds"`
}

// SaveConfig persists a user's complete configuration and marks initial
// setup as done. Each store is updated on its own; the first failure aborts.
//
// POST /usuario/:telegramId/configuracion
func (h *Handlers) SaveConfig(c *gin.Context) {
	id, valid := telegramID(c)
	if !valid {
		fail(c, http.StatusBadRequest, codeBadRequest, "invalid telegram id", nil)
		return
	}

	var req SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "invalid configuration payload", err)
		return
	}

	ctx := c.Request.Context()
	if err := h.users.UpdateName(ctx, id, req.Name); err != nil {
		fail(c, http.StatusInternalServerError, codeInternalError, "could not save configuration", err)
		return
	}
	prefs := domain.Preferences{
		MinDiscount: req.DiscountPercent,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
	}
	if err := h.prefs.Update(ctx, id, prefs); err != nil {
		fail(c, http.StatusInternalServerError, codeInternalError, "could not save configuration", err)
		return
	}
	if err := h.categories.ReplaceSelection(ctx, id, req.SelectedIDs); err != nil {
		fail(c, http.StatusInternalServerError, codeInternalError, "could not save configuration", err)
		return
	}
	if err := h.users.CompleteSetup(ctx, id); err != nil {
		fail(c, http.StatusInternalServerError, codeInternalError, "could not save configuration", err)
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "configuración actualizada correctamente"})
}
