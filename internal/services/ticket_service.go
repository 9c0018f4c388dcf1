package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sphere-events/sphere/internal/models"
	"github.com/sphere-events/sphere/internal/repository"
)

var (
	// ErrRSVPNotConfirmed is returned when a ticket is requested for an unconfirmed RSVP
	ErrRSVPNotConfirmed = errors.New("rsvp is not confirmed")
	// ErrPaymentPending is returned when the invoice carries no proof of payment yet
	ErrPaymentPending = errors.New("payment is still processing")
)

// EmailSender delivers a plain-text email
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// TicketService sends the one-off ticket confirmation email. The sent flag on
// the invoice is the only idempotency guard; it only flips after the email
// API call returns without error, so a failed send stays retryable.
type TicketService struct {
	events   repository.EventRepository
	rsvps    repository.RSVPRepository
	invoices repository.InvoiceRepository
	email    EmailSender
	logger   *zap.Logger
}

// NewTicketService creates a ticket service
func NewTicketService(
	events repository.EventRepository,
	rsvps repository.RSVPRepository,
	invoices repository.InvoiceRepository,
	email EmailSender,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		events:   events,
		rsvps:    rsvps,
		invoices: invoices,
		email:    email,
		logger:   logger,
	}
}

// SendTicket emails the caller their ticket for the event. Preconditions are
// checked in order: confirmed RSVP, invoice present, payment proven, not
// already sent.
func (s *TicketService) SendTicket(ctx context.Context, user *models.User, eventID uuid.UUID) error {
	rsvp, err := s.rsvps.GetByUserAndEvent(ctx, user.ID, eventID)
	if err != nil {
		return err
	}

	if rsvp.Status != models.RSVPConfirmed {
		return ErrRSVPNotConfirmed
	}

	invoice, err := s.invoices.LatestForRSVP(ctx, rsvp.ID)
	if err != nil {
		return err
	}

	if !invoice.PaymentProven() {
		return ErrPaymentPending
	}

	if invoice.TicketEmailSent {
		return repository.ErrTicketAlreadySent
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	subject := "Your Event Ticket - " + event.Title
	body := ticketBody(user, event, invoice)

	if err := s.email.Send(ctx, user.Email, subject, body); err != nil {
		// Flag stays unset; the user retries manually.
		return err
	}

	if err := s.invoices.MarkTicketEmailSent(ctx, invoice.ID); err != nil {
		if errors.Is(err, repository.ErrTicketAlreadySent) {
			// A concurrent caller won the conditional update after both sends
			// went out. The caller's send succeeded, so report success.
			s.logger.Warn("Ticket flag already set after send", zap.String("invoice_id", invoice.ID.String()))
			return nil
		}
		return err
	}

	s.logger.Info("Ticket email sent",
		zap.String("user_id", user.ID.String()),
		zap.String("event_id", eventID.String()))

	return nil
}

const ticketDivider = "==============================================================="

// ticketBody renders the fixed plain-text ticket template
func ticketBody(user *models.User, event *models.Event, invoice *models.Invoice) string {
	name := user.Name
	if name == "" {
		name = strings.SplitN(user.ExternalID, "@", 2)[0]
	}

	venueMode := "In-Person Event"
	if event.IsOnline {
		venueMode = "Online Event"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "Your event ticket for %q is confirmed!\n\n", event.Title)
	b.WriteString(ticketDivider + "\nEVENT DETAILS\n" + ticketDivider + "\n\n")
	fmt.Fprintf(&b, "Event Name: %s\n", event.Title)
	fmt.Fprintf(&b, "Date: %s\n", event.Date.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "Time: %s\n", event.Date.Format("3:04 PM"))
	fmt.Fprintf(&b, "Location: %s\n", event.Location)
	fmt.Fprintf(&b, "Event Type: %s\n\n", venueMode)
	b.WriteString(ticketDivider + "\nTICKET INFORMATION\n" + ticketDivider + "\n\n")
	fmt.Fprintf(&b, "Order ID: %s\n", invoice.OrderID)
	b.WriteString("Ticket Status: Confirmed\n")
	if invoice.Proof != nil {
		switch invoice.Proof.Kind {
		case models.ProofReceipt:
			fmt.Fprintf(&b, "M-Pesa Receipt: %s\n", invoice.Proof.Value)
		case models.ProofTransaction:
			fmt.Fprintf(&b, "Transaction Code: %s\n", invoice.Proof.Value)
		}
	}
	b.WriteString("\n" + ticketDivider + "\n\n")
	b.WriteString("Please arrive on time, bring a valid ID for verification at the\n")
	b.WriteString("venue, and keep this email as your ticket confirmation.\n\n")
	b.WriteString("We look forward to seeing you at the event!\n")

	return b.String()
}
