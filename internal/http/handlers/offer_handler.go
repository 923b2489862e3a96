package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ofertasgt/go-deals-backend/internal/services"
)

const (
	defaultOfferCount = 10
	maxOfferCount     = 50
)

// ListOffers runs the ingestion pipeline for a user and returns the
// filtered offers, sorted and truncated per the query parameters.
//
// GET /usuario/:telegramId/ofertas?cantidad=10&orden=descuento
//
// orden is one of descuento (default), precio, aleatorio; unknown values
// fall back to descuento. The pipeline itself never errors: an empty data
// set covers both "nothing matched" and upstream failures.
func (h *Handlers) ListOffers(c *gin.Context) {
	id, valid := telegramID(c)
	if !valid {
		fail(c, http.StatusBadRequest, codeBadRequest, "invalid telegram id", nil)
		return
	}

	count := defaultOfferCount
	if v := c.Query("cantidad"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}
	if count > maxOfferCount {
		count = maxOfferCount
	}

	offers := h.offers.LoadOffers(c.Request.Context(), id)
	services.SortOffers(offers, c.Query("orden"))
	offers = services.TopN(offers, count)

	ok(c, http.StatusOK, gin.H{
		"ofertas": offers,
		"total":   len(offers),
	})
}
