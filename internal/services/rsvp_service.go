package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sphere-events/sphere/internal/clients"
	"github.com/sphere-events/sphere/internal/models"
	"github.com/sphere-events/sphere/internal/repository"
)

var (
	// ErrNotOwner is returned when a caller acts on a record they do not own
	ErrNotOwner = errors.New("not the owner of this record")
)

// CheckoutCreator initiates payments against the payment provider
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, checkout clients.CheckoutRequest) (*clients.CheckoutResponse, error)
}

// RSVPService drives the registration lifecycle: NONE -> PENDING -> CONFIRMED.
// Free events confirm immediately; paid events stay pending until the payment
// callback arrives with a transaction code.
type RSVPService struct {
	events   repository.EventRepository
	rsvps    repository.RSVPRepository
	invoices repository.InvoiceRepository
	payments CheckoutCreator
	logger   *zap.Logger
}

// NewRSVPService creates an RSVP service
func NewRSVPService(
	events repository.EventRepository,
	rsvps repository.RSVPRepository,
	invoices repository.InvoiceRepository,
	payments CheckoutCreator,
	logger *zap.Logger,
) *RSVPService {
	return &RSVPService{
		events:   events,
		rsvps:    rsvps,
		invoices: invoices,
		payments: payments,
		logger:   logger,
	}
}

// Register creates an RSVP for the user on the event. Capacity and duplicate
// checks happen inside the guarded insert, so two concurrent calls cannot
// both land.
func (s *RSVPService) Register(ctx context.Context, user *models.User, eventID uuid.UUID, req models.RegisterRequest) (*models.RegisterResponse, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.Price == 0 {
		rsvp := &models.RSVP{
			ID:      uuid.New(),
			UserID:  user.ID,
			EventID: eventID,
			Status:  models.RSVPConfirmed,
		}
		if err := s.rsvps.Register(ctx, rsvp); err != nil {
			return nil, err
		}

		s.logger.Info("RSVP confirmed for free event",
			zap.String("user_id", user.ID.String()),
			zap.String("event_id", eventID.String()))

		return &models.RegisterResponse{Success: true}, nil
	}

	rsvp := &models.RSVP{
		ID:      uuid.New(),
		UserID:  user.ID,
		EventID: eventID,
		Status:  models.RSVPPending,
	}
	if err := s.rsvps.Register(ctx, rsvp); err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		ID:      uuid.New(),
		RSVPID:  rsvp.ID,
		UserID:  user.ID,
		EventID: eventID,
		OrderID: uuid.NewString(),
		Status:  models.InvoicePending,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}

	checkout, err := s.payments.CreateCheckout(ctx, clients.CheckoutRequest{
		OrderID:       invoice.OrderID,
		Amount:        event.Price,
		Method:        req.PaymentMethod,
		CustomerEmail: user.Email,
		Reference:     event.Title,
		ReturnURL:     req.OriginURL,
	})
	if err != nil {
		// The RSVP and invoice stay PENDING; the user can retry registration
		// via the payment page once the provider recovers.
		return nil, err
	}

	s.logger.Info("RSVP pending payment",
		zap.String("user_id", user.ID.String()),
		zap.String("event_id", eventID.String()),
		zap.String("order_id", invoice.OrderID))

	return &models.RegisterResponse{
		PaymentURL: checkout.PaymentURL,
		OrderID:    invoice.OrderID,
	}, nil
}

// ConfirmPayment handles the provider's return callback: it marks the invoice
// confirmed with the transaction code and flips the linked RSVP to CONFIRMED.
// An invoice whose RSVP no longer resolves is an error, never a silent no-op.
func (s *RSVPService) ConfirmPayment(ctx context.Context, user *models.User, eventID uuid.UUID, orderID, transactionCode string) error {
	invoice, err := s.invoices.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	if invoice.UserID != user.ID {
		return ErrNotOwner
	}
	if invoice.EventID != eventID {
		return repository.ErrInvoiceNotFound
	}

	proof := models.PaymentProof{
		Kind:  models.ProofTransaction,
		Value: transactionCode,
	}
	if err := s.invoices.MarkConfirmed(ctx, invoice.ID, proof); err != nil {
		return err
	}

	if err := s.rsvps.Confirm(ctx, invoice.RSVPID); err != nil {
		s.logger.Error("Invoice confirmed but RSVP could not be resolved",
			zap.String("order_id", orderID),
			zap.String("rsvp_id", invoice.RSVPID.String()),
			zap.Error(err))
		return err
	}

	s.logger.Info("Payment confirmed",
		zap.String("order_id", orderID),
		zap.String("rsvp_id", invoice.RSVPID.String()))

	return nil
}

// ListForUser returns the caller's RSVPs with nested event data
func (s *RSVPService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.RSVPWithEvent, error) {
	return s.rsvps.ListByUser(ctx, userID)
}

// GuestList returns an event's RSVPs with totals, for the owning organizer
func (s *RSVPService) GuestList(ctx context.Context, user *models.User, eventID uuid.UUID) (*models.GuestListResponse, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.OrganizerID != user.ID && user.Role != models.RoleAdmin {
		return nil, ErrNotOwner
	}

	attendees, err := s.rsvps.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	confirmed := 0
	for _, a := range attendees {
		if a.Status == models.RSVPConfirmed {
			confirmed++
		}
	}

	return &models.GuestListResponse{
		Event:     *event,
		RSVPs:     attendees,
		Total:     len(attendees),
		Confirmed: confirmed,
	}, nil
}
