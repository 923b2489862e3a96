package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// ListCategories returns the full category catalog.
//
// GET /categorias
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.categories.Catalog(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, codeInternalError, "could not load categories", err)
		return
	}
	ok(c, http.StatusOK, gin.H{"categorias": cats})
}

// ListUserCategories returns the category ids selected by a user.
//
// GET /usuario/:telegramId/categorias
func (h *Handlers) ListUserCategories(c *gin.Context) {
	id, valid := telegramID(c)
	if !valid {
		fail(c, http.StatusBadRequest, codeBadRequest, "invalid telegram id", nil)
		return
	}
	selected, err := h.categories.SelectedIDs(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, codeInternalError, "could not load user categories", err)
		return
	}
	ids := make([]uint, 0, len(selected))
	for cid := range selected {
		ids = append(ids, cid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ok(c, http.StatusOK, gin.H{"selectedIds": ids})
}
