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

// RSVPRepository defines the interface for RSVP data access
type RSVPRepository interface {
	Register(ctx context.Context, rsvp *models.RSVP) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RSVP, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*models.RSVP, error)
	Confirm(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RSVPWithEvent, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.AttendeeResponse, error)
	CountConfirmed(ctx context.Context, eventID uuid.UUID) (int, error)
}

type rsvpRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRSVPRepository creates a new RSVP repository
func NewRSVPRepository(db *sql.DB, log zerolog.Logger) RSVPRepository {
	return &rsvpRepository{
		db:  db,
		log: log,
	}
}

// Register inserts an RSVP as a single guarded write. The insert only lands
// while the confirmed count is below the event's capacity, and the
// (user_id, event_id) UNIQUE constraint rejects duplicates at commit time, so
// concurrent registrations cannot race past either check.
func (r *rsvpRepository) Register(ctx context.Context, rsvp *models.RSVP) error {
	query := `
		INSERT INTO rsvps (id, user_id, event_id, status, created_at)
		SELECT $1, $2, $3, $4, $5
		WHERE (SELECT COUNT(*) FROM rsvps WHERE event_id = $3 AND status = 'CONFIRMED')
			< (SELECT capacity FROM events WHERE id = $3)
	`

	rsvp.CreatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		rsvp.ID,
		rsvp.UserID,
		rsvp.EventID,
		rsvp.Status,
		rsvp.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyRegistered
		}
		r.log.Error().Err(err).
			Str("user_id", rsvp.UserID.String()).
			Str("event_id", rsvp.EventID.String()).
			Msg("Failed to register RSVP")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// A full event suppresses the insert before the UNIQUE constraint can
		// fire, so a duplicate at capacity must be told apart here.
		var exists bool
		err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM rsvps WHERE user_id = $1 AND event_id = $2)`,
			rsvp.UserID, rsvp.EventID,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyRegistered
		}
		return ErrCapacityExceeded
	}

	return nil
}

// GetByID retrieves an RSVP by its ID
func (r *rsvpRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RSVP, error) {
	query := `
		SELECT id, user_id, event_id, status, created_at
		FROM rsvps
		WHERE id = $1
	`

	var rsvp models.RSVP
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rsvp.ID,
		&rsvp.UserID,
		&rsvp.EventID,
		&rsvp.Status,
		&rsvp.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRSVPNotFound
		}
		r.log.Error().Err(err).Str("rsvp_id", id.String()).Msg("Failed to get RSVP by ID")
		return nil, err
	}

	return &rsvp, nil
}

// GetByUserAndEvent retrieves the RSVP for a (user, event) pair
func (r *rsvpRepository) GetByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*models.RSVP, error) {
	query := `
		SELECT id, user_id, event_id, status, created_at
		FROM rsvps
		WHERE user_id = $1 AND event_id = $2
	`

	var rsvp models.RSVP
	err := r.db.QueryRowContext(ctx, query, userID, eventID).Scan(
		&rsvp.ID,
		&rsvp.UserID,
		&rsvp.EventID,
		&rsvp.Status,
		&rsvp.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRSVPNotFound
		}
		r.log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("event_id", eventID.String()).
			Msg("Failed to get RSVP by user and event")
		return nil, err
	}

	return &rsvp, nil
}

// Confirm transitions an RSVP to CONFIRMED
func (r *rsvpRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE rsvps SET status = 'CONFIRMED' WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.log.Error().Err(err).Str("rsvp_id", id.String()).Msg("Failed to confirm RSVP")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrRSVPNotFound
	}

	return nil
}

// ListByUser retrieves a user's RSVPs with their events, newest first
func (r *rsvpRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RSVPWithEvent, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.status, r.created_at,
			e.id, e.title, e.description, e.date, e.location, e.is_online, e.category,
			e.price, e.capacity, e.organizer_id, e.image, e.share_token, e.created_at, e.updated_at
		FROM rsvps r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list RSVPs by user")
		return nil, err
	}
	defer rows.Close()

	var results []models.RSVPWithEvent
	for rows.Next() {
		var item models.RSVPWithEvent
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.EventID, &item.Status, &item.CreatedAt,
			&item.Event.ID, &item.Event.Title, &item.Event.Description, &item.Event.Date,
			&item.Event.Location, &item.Event.IsOnline, &item.Event.Category,
			&item.Event.Price, &item.Event.Capacity, &item.Event.OrganizerID,
			&item.Event.Image, &item.Event.ShareToken, &item.Event.CreatedAt, &item.Event.UpdatedAt,
		); err != nil {
			r.log.Error().Err(err).Msg("Failed to scan RSVP with event")
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// ListByEvent retrieves an event's guest list with attendee details
func (r *rsvpRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.AttendeeResponse, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.status, r.created_at,
			u.id, u.external_id, u.email, u.name, u.role, u.wallet_address
		FROM rsvps r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		r.log.Error().Err(err).Str("event_id", eventID.String()).Msg("Failed to list RSVPs by event")
		return nil, err
	}
	defer rows.Close()

	var results []models.AttendeeResponse
	for rows.Next() {
		var item models.AttendeeResponse
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.EventID, &item.Status, &item.CreatedAt,
			&item.User.ID, &item.User.ExternalID, &item.User.Email,
			&item.User.Name, &item.User.Role, &item.User.WalletAddress,
		); err != nil {
			r.log.Error().Err(err).Msg("Failed to scan attendee")
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// CountConfirmed counts the confirmed RSVPs on an event
func (r *rsvpRepository) CountConfirmed(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM rsvps WHERE event_id = $1 AND status = 'CONFIRMED'`

	var count int
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		r.log.Error().Err(err).Str("event_id", eventID.String()).Msg("Failed to count confirmed RSVPs")
		return 0, err
	}

	return count, nil
}
