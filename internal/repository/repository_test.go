package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sphere-events/sphere/internal/database"
	"github.com/sphere-events/sphere/internal/models"
)

type testRepos struct {
	users    UserRepository
	events   EventRepository
	rsvps    RSVPRepository
	invoices InvoiceRepository
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	return &testRepos{
		users:    NewUserRepository(db.DB(), log),
		events:   NewEventRepository(db.DB(), log),
		rsvps:    NewRSVPRepository(db.DB(), log),
		invoices: NewInvoiceRepository(db.DB(), log),
	}
}

func (r *testRepos) createUser(t *testing.T, externalID string) *models.User {
	t.Helper()

	user := &models.User{
		ID:          uuid.New(),
		ExternalID:  externalID,
		Email:       externalID,
		Name:        "Test User",
		Role:        models.RoleUser,
		BearerToken: "token-" + uuid.NewString(),
	}
	require.NoError(t, r.users.Create(context.Background(), user))
	return user
}

func (r *testRepos) createEvent(t *testing.T, organizer *models.User, price float64, capacity int) *models.Event {
	t.Helper()

	event := &models.Event{
		ID:          uuid.New(),
		Title:       "Test Event",
		Description: "A test event",
		Date:        time.Now().Add(24 * time.Hour),
		Location:    "Nairobi",
		Category:    models.CategoryTech,
		Price:       price,
		Capacity:    capacity,
		OrganizerID: organizer.ID,
		ShareToken:  uuid.NewString(),
	}
	require.NoError(t, r.events.Create(context.Background(), event))
	return event
}

func (r *testRepos) register(t *testing.T, user *models.User, event *models.Event, status string) *models.RSVP {
	t.Helper()

	rsvp := &models.RSVP{
		ID:      uuid.New(),
		UserID:  user.ID,
		EventID: event.ID,
		Status:  status,
	}
	require.NoError(t, r.rsvps.Register(context.Background(), rsvp))
	return rsvp
}
