package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sphere-events/sphere/internal/models"
)

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Invoice, error)
	LatestForRSVP(ctx context.Context, rsvpID uuid.UUID) (*models.Invoice, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID, proof models.PaymentProof) error
	MarkTicketEmailSent(ctx context.Context, id uuid.UUID) error
}

type invoiceRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, log zerolog.Logger) InvoiceRepository {
	return &invoiceRepository{
		db:  db,
		log: log,
	}
}

const invoiceColumns = `id, rsvp_id, user_id, event_id, order_id, status, proof_kind, proof_value, ticket_email_sent, created_at`

func scanInvoice(row interface{ Scan(...any) error }) (*models.Invoice, error) {
	var (
		invoice    models.Invoice
		proofKind  sql.NullString
		proofValue sql.NullString
	)
	err := row.Scan(
		&invoice.ID,
		&invoice.RSVPID,
		&invoice.UserID,
		&invoice.EventID,
		&invoice.OrderID,
		&invoice.Status,
		&proofKind,
		&proofValue,
		&invoice.TicketEmailSent,
		&invoice.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if proofKind.Valid {
		invoice.Proof = &models.PaymentProof{
			Kind:  models.ProofKind(proofKind.String),
			Value: proofValue.String,
		}
	}

	return &invoice, nil
}

// Create inserts a new pending invoice
func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, rsvp_id, user_id, event_id, order_id, status, ticket_email_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	invoice.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.RSVPID,
		invoice.UserID,
		invoice.EventID,
		invoice.OrderID,
		invoice.Status,
		invoice.TicketEmailSent,
		invoice.CreatedAt,
	)

	if err != nil {
		r.log.Error().Err(err).Str("order_id", invoice.OrderID).Msg("Failed to create invoice")
		return err
	}

	return nil
}

// GetByOrderID retrieves an invoice by its order id
func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE order_id = $1`

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		r.log.Error().Err(err).Str("order_id", orderID).Msg("Failed to get invoice by order ID")
		return nil, err
	}

	return invoice, nil
}

// LatestForRSVP retrieves the most recent invoice for an RSVP
func (r *invoiceRepository) LatestForRSVP(ctx context.Context, rsvpID uuid.UUID) (*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE rsvp_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, rsvpID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		r.log.Error().Err(err).Str("rsvp_id", rsvpID.String()).Msg("Failed to get latest invoice for RSVP")
		return nil, err
	}

	return invoice, nil
}

// MarkConfirmed sets the invoice status and records the payment proof
func (r *invoiceRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, proof models.PaymentProof) error {
	query := `
		UPDATE invoices
		SET status = 'CONFIRMED', proof_kind = $1, proof_value = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, string(proof.Kind), proof.Value, id)
	if err != nil {
		r.log.Error().Err(err).Str("invoice_id", id.String()).Msg("Failed to confirm invoice")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}

// MarkTicketEmailSent flips the ticket flag as a conditional write. A second
// caller racing past the precondition check loses here instead of sending a
// duplicate state change.
func (r *invoiceRepository) MarkTicketEmailSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE invoices
		SET ticket_email_sent = 1
		WHERE id = $1 AND ticket_email_sent = 0
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.log.Error().Err(err).Str("invoice_id", id.String()).Msg("Failed to mark ticket email sent")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrTicketAlreadySent
	}

	return nil
}
