package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sphere-events/sphere/internal/services"
)

type ExchangeHandler struct {
	exchange *services.ExchangeService
	logger   *zap.Logger
}

func NewExchangeHandler(exchange *services.ExchangeService, logger *zap.Logger) *ExchangeHandler {
	return &ExchangeHandler{
		exchange: exchange,
		logger:   logger,
	}
}

// Rate returns the current selling rate for price display
func (h *ExchangeHandler) Rate(c *gin.Context) {
	rate, err := h.exchange.Rate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch exchange rate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sellingRate": rate})
}
