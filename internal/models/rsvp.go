package models

import (
	"time"

	"github.com/google/uuid"
)

// RSVP statuses
const (
	RSVPPending   = "PENDING"
	RSVPConfirmed = "CONFIRMED"
)

// RSVP is a user's reservation against an event, independent of payment.
// At most one RSVP exists per (user, event) pair.
type RSVP struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	EventID   uuid.UUID `json:"eventId" db:"event_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest is the body of the RSVP endpoint
type RegisterRequest struct {
	OriginURL     string `json:"originUrl"`
	PaymentMethod string `json:"paymentMethod"`
}

// RegisterResponse is returned by the RSVP endpoint. Free events confirm
// immediately; paid events hand back a checkout URL instead.
type RegisterResponse struct {
	Success    bool   `json:"success,omitempty"`
	PaymentURL string `json:"paymentUrl,omitempty"`
	OrderID    string `json:"orderId,omitempty"`
}

// ConfirmTransactionRequest is the body of the payment callback endpoint
type ConfirmTransactionRequest struct {
	TransactionCode string `json:"transactionCode" binding:"required"`
	OrderID         string `json:"orderId" binding:"required"`
}

// RSVPWithEvent pairs an RSVP with its event for listing endpoints
type RSVPWithEvent struct {
	RSVP
	Event Event `json:"event"`
}

// AttendeeResponse is one row of an organizer's guest list
type AttendeeResponse struct {
	RSVP
	User UserResponse `json:"user"`
}

// GuestListResponse is the organizer dashboard payload
type GuestListResponse struct {
	Event     Event              `json:"event"`
	RSVPs     []AttendeeResponse `json:"rsvps"`
	Total     int                `json:"total"`
	Confirmed int                `json:"confirmed"`
}
