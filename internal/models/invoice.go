package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses
const (
	InvoicePending   = "PENDING"
	InvoiceConfirmed = "CONFIRMED"
)

// ProofKind identifies which payment rail produced the proof of payment.
type ProofKind string

const (
	// ProofReceipt is a mobile-money receipt number
	ProofReceipt ProofKind = "receipt"
	// ProofTransaction is an on-chain transaction code
	ProofTransaction ProofKind = "transaction"
)

// PaymentProof is evidence that a payment landed on some rail.
type PaymentProof struct {
	Kind  ProofKind `json:"kind"`
	Value string    `json:"value"`
}

// Invoice tracks one payment attempt for an RSVP. The rail-specific proof can
// arrive before the status flips to CONFIRMED, so payment is considered proven
// if either is present.
type Invoice struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	RSVPID          uuid.UUID     `json:"rsvpId" db:"rsvp_id"`
	UserID          uuid.UUID     `json:"userId" db:"user_id"`
	EventID         uuid.UUID     `json:"eventId" db:"event_id"`
	OrderID         string        `json:"orderId" db:"order_id"`
	Status          string        `json:"status" db:"status"`
	Proof           *PaymentProof `json:"proof,omitempty"`
	TicketEmailSent bool          `json:"ticketEmailSent" db:"ticket_email_sent"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// PaymentProven reports whether any evidence of successful payment exists:
// a confirmed status or a rail-specific proof.
func (i *Invoice) PaymentProven() bool {
	return i.Status == InvoiceConfirmed || i.Proof != nil
}
