package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/pricing"
)

type PricingHandler struct{}

func NewPricingHandler() *PricingHandler {
	return &PricingHandler{}
}

func (ph *PricingHandler) Quote(c *gin.Context) {
	country := c.Query("country")
	kind := c.Query("kind")
	if country == "" || kind == "" {
		fail(c, errordata.CodeBadRequest, "country and kind are required")
		return
	}
	days := 1
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			fail(c, errordata.CodeBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}
	c.JSON(http.StatusOK, pricing.QuoteFor(country, kind, days))
}
