package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sphere-events/sphere/internal/clients"
	"github.com/sphere-events/sphere/internal/database"
	"github.com/sphere-events/sphere/internal/models"
	"github.com/sphere-events/sphere/internal/repository"
	"github.com/sphere-events/sphere/internal/rift"
)

// stubCheckout stands in for the payment provider
type stubCheckout struct {
	mu    sync.Mutex
	calls []clients.CheckoutRequest
	fail  bool
}

func (s *stubCheckout) CreateCheckout(_ context.Context, checkout clients.CheckoutRequest) (*clients.CheckoutResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("payment provider unavailable")
	}
	s.calls = append(s.calls, checkout)
	return &clients.CheckoutResponse{
		PaymentURL: "https://pay.example.com/checkout/" + checkout.OrderID,
	}, nil
}

// stubEmail stands in for the email delivery API
type stubEmail struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	delay time.Duration
}

func (s *stubEmail) Send(_ context.Context, to, subject, body string) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("email API unavailable")
	}
	s.sent = append(s.sent, to)
	return nil
}

func (s *stubEmail) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type testEnv struct {
	users    repository.UserRepository
	events   repository.EventRepository
	rsvps    repository.RSVPRepository
	invoices repository.InvoiceRepository

	provider rift.Provider
	auth     *AuthService
	event    *EventService
	rsvp     *RSVPService
	ticket   *TicketService

	checkout *stubCheckout
	email    *stubEmail
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	zlog := zap.NewNop()

	env := &testEnv{
		users:    repository.NewUserRepository(db.DB(), log),
		events:   repository.NewEventRepository(db.DB(), log),
		rsvps:    repository.NewRSVPRepository(db.DB(), log),
		invoices: repository.NewInvoiceRepository(db.DB(), log),
		checkout: &stubCheckout{},
		email:    &stubEmail{},
	}

	env.provider = rift.NewLocalProvider(db.DB(), "test-secret", time.Hour, zlog)
	env.auth = NewAuthService(env.users, env.provider, zlog)
	env.event = NewEventService(env.events, env.rsvps, env.users, zlog)
	env.rsvp = NewRSVPService(env.events, env.rsvps, env.invoices, env.checkout, zlog)
	env.ticket = NewTicketService(env.events, env.rsvps, env.invoices, env.email, zlog)

	return env
}

var userSeq int

// signup creates an account end to end through the auth bridge
func (e *testEnv) signup(t *testing.T, externalID string) *models.User {
	t.Helper()

	result, err := e.auth.Signup(context.Background(), models.SignupRequest{
		ExternalID: externalID,
		Password:   "password123",
	})
	require.NoError(t, err)

	user, err := e.users.GetByBearerToken(context.Background(), result.BearerToken)
	require.NoError(t, err)
	return user
}

func (e *testEnv) newUser(t *testing.T) *models.User {
	t.Helper()
	userSeq++
	return e.signup(t, fmt.Sprintf("user%d@example.com", userSeq))
}

func (e *testEnv) createEvent(t *testing.T, organizer *models.User, price float64, capacity int) *models.Event {
	t.Helper()

	event, err := e.event.Create(context.Background(), organizer, &models.EventRequest{
		Title:       "Sphere Launch",
		Description: "Launch party",
		Date:        time.Now().Add(48 * time.Hour),
		Location:    "Nairobi",
		Category:    models.CategoryTech,
		Price:       price,
		Capacity:    capacity,
	})
	require.NoError(t, err)
	return event
}
