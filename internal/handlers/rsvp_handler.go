package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sphere-events/sphere/internal/models"
	"github.com/sphere-events/sphere/internal/services"
)

type RSVPHandler struct {
	rsvps   *services.RSVPService
	tickets *services.TicketService
	logger  *zap.Logger
}

func NewRSVPHandler(rsvps *services.RSVPService, tickets *services.TicketService, logger *zap.Logger) *RSVPHandler {
	return &RSVPHandler{
		rsvps:   rsvps,
		tickets: tickets,
		logger:  logger,
	}
}

// Register creates an RSVP for the caller on the event. Free events confirm
// immediately; paid events get a payment URL back.
func (h *RSVPHandler) Register(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.rsvps.Register(c.Request.Context(), CurrentUser(c), eventID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ConfirmTransaction is the payment provider's return callback
func (h *RSVPHandler) ConfirmTransaction(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req models.ConfirmTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rsvps.ConfirmPayment(c.Request.Context(), CurrentUser(c), eventID, req.OrderID, req.TransactionCode); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Mine returns the caller's RSVPs with nested event data
func (h *RSVPHandler) Mine(c *gin.Context) {
	rsvps, err := h.rsvps.ListForUser(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rsvps)
}

// GuestList returns an event's RSVPs with totals, organizer only
func (h *RSVPHandler) GuestList(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	guests, err := h.rsvps.GuestList(c.Request.Context(), CurrentUser(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, guests)
}

// SendTicket emails the caller their ticket for the event
func (h *RSVPHandler) SendTicket(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.tickets.SendTicket(c.Request.Context(), CurrentUser(c), eventID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ticket email sent successfully",
	})
}
