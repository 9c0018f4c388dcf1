package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sphere-events/sphere/internal/models"
	"github.com/sphere-events/sphere/internal/repository"
)

var (
	// ErrInvalidCategory is returned for an unknown event category
	ErrInvalidCategory = errors.New("invalid event category")
)

// EventService manages the event directory and organizer ownership
type EventService struct {
	events repository.EventRepository
	rsvps  repository.RSVPRepository
	users  repository.UserRepository
	logger *zap.Logger
}

// NewEventService creates an event service
func NewEventService(
	events repository.EventRepository,
	rsvps repository.RSVPRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		events: events,
		rsvps:  rsvps,
		users:  users,
		logger: logger,
	}
}

// Create lists a new event owned by the caller. Creating a first event
// promotes a plain user to organizer.
func (s *EventService) Create(ctx context.Context, user *models.User, req *models.EventRequest) (*models.Event, error) {
	if !models.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	event := &models.Event{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		IsOnline:    req.IsOnline,
		Category:    req.Category,
		Price:       req.Price,
		Capacity:    req.Capacity,
		OrganizerID: user.ID,
		Image:       req.Image,
		ShareToken:  uuid.NewString(),
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	if user.Role == models.RoleUser {
		if err := s.users.UpdateRole(ctx, user.ID, models.RoleOrganizer); err != nil {
			s.logger.Warn("Failed to promote user to organizer", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("organizer_id", user.ID.String()))

	return event, nil
}

// Get returns one event with organizer details and RSVP count
func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*models.EventResponse, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	organizer, err := s.users.GetByID(ctx, event.OrganizerID)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.rsvps.CountConfirmed(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.EventResponse{
		Event:       *event,
		Organizer:   organizer.Public(),
		Confirmed:   confirmed,
		CalendarURL: event.CalendarURL(),
	}, nil
}

// List returns upcoming events with their confirmed counts
func (s *EventService) List(ctx context.Context, offset, limit int) ([]models.EventResponse, error) {
	events, err := s.events.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.EventResponse, 0, len(events))
	for _, event := range events {
		confirmed, err := s.rsvps.CountConfirmed(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, models.EventResponse{
			Event:       *event,
			Confirmed:   confirmed,
			CalendarURL: event.CalendarURL(),
		})
	}

	return results, nil
}

// ListByOrganizer returns the caller's own events
func (s *EventService) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*models.Event, error) {
	return s.events.ListByOrganizer(ctx, organizerID)
}

// Update edits an event owned by the caller
func (s *EventService) Update(ctx context.Context, user *models.User, id uuid.UUID, req *models.EventRequest) (*models.Event, error) {
	if !models.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if event.OrganizerID != user.ID && user.Role != models.RoleAdmin {
		return nil, ErrNotOwner
	}

	return s.events.Update(ctx, id, req)
}

// Delete removes an event owned by the caller
func (s *EventService) Delete(ctx context.Context, user *models.User, id uuid.UUID) error {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if event.OrganizerID != user.ID && user.Role != models.RoleAdmin {
		return ErrNotOwner
	}

	return s.events.Delete(ctx, id)
}
