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

// EventRepository defines the interface for event data access
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Update(ctx context.Context, id uuid.UUID, updateReq *models.EventRequest) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, offset, limit int) ([]*models.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*models.Event, error)
}

type eventRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB, log zerolog.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log,
	}
}

const eventColumns = `id, title, description, date, location, is_online, category, price, capacity, organizer_id, image, share_token, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.IsOnline,
		&event.Category,
		&event.Price,
		&event.Capacity,
		&event.OrganizerID,
		&event.Image,
		&event.ShareToken,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event into the database
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, title, description, date, location, is_online, category, price, capacity, organizer_id, image, share_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		event.IsOnline,
		event.Category,
		event.Price,
		event.Capacity,
		event.OrganizerID,
		event.Image,
		event.ShareToken,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		r.log.Error().Err(err).Str("event_id", event.ID.String()).Msg("Failed to create event")
		return err
	}

	return nil
}

// GetByID retrieves an event by its ID
func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		r.log.Error().Err(err).Str("event_id", id.String()).Msg("Failed to get event by ID")
		return nil, err
	}

	return event, nil
}

// Update modifies an existing event
func (r *eventRepository) Update(ctx context.Context, id uuid.UUID, updateReq *models.EventRequest) (*models.Event, error) {
	// updated_at is set here rather than left to the trigger so the
	// RETURNING clause hands back the fresh timestamp.
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, location = $4, is_online = $5, category = $6, price = $7, capacity = $8, image = $9, updated_at = $10
		WHERE id = $11
		RETURNING ` + eventColumns

	event, err := scanEvent(r.db.QueryRowContext(ctx, query,
		updateReq.Title,
		updateReq.Description,
		updateReq.Date,
		updateReq.Location,
		updateReq.IsOnline,
		updateReq.Category,
		updateReq.Price,
		updateReq.Capacity,
		updateReq.Image,
		time.Now(),
		id,
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		r.log.Error().Err(err).Str("event_id", id.String()).Msg("Failed to update event")
		return nil, err
	}

	return event, nil
}

// Delete removes an event from the database
func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.log.Error().Err(err).Str("event_id", id.String()).Msg("Failed to delete event")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to get rows affected for event delete")
		return err
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// List retrieves events ordered by date, soonest first
func (r *eventRepository) List(ctx context.Context, offset, limit int) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY date ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to list events")
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListByOrganizer retrieves events owned by an organizer
func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		r.log.Error().Err(err).Str("organizer_id", organizerID.String()).Msg("Failed to list organizer events")
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
