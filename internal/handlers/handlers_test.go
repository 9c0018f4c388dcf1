package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sphere-events/sphere/internal/clients"
	"github.com/sphere-events/sphere/internal/database"
	"github.com/sphere-events/sphere/internal/repository"
	"github.com/sphere-events/sphere/internal/rift"
	"github.com/sphere-events/sphere/internal/services"
)

type fakeCheckout struct{}

func (fakeCheckout) CreateCheckout(_ context.Context, checkout clients.CheckoutRequest) (*clients.CheckoutResponse, error) {
	return &clients.CheckoutResponse{PaymentURL: "https://pay.example.com/checkout/" + checkout.OrderID}, nil
}

type fakeEmail struct{ fail bool }

func (f fakeEmail) Send(context.Context, string, string, string) error {
	if f.fail {
		return errors.New("email API unavailable")
	}
	return nil
}

// newTestRouter wires the API the way the server binary does, with external
// providers stubbed out
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repoLog := zerolog.Nop()
	logger := zap.NewNop()

	users := repository.NewUserRepository(db.DB(), repoLog)
	events := repository.NewEventRepository(db.DB(), repoLog)
	rsvps := repository.NewRSVPRepository(db.DB(), repoLog)
	invoices := repository.NewInvoiceRepository(db.DB(), repoLog)

	provider := rift.NewLocalProvider(db.DB(), "test-secret", time.Hour, logger)

	// Blob store stub: echoes back a public URL for whatever was PUT.
	blobBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"url": "https://blobs.example.com" + req.URL.Path})
	}))
	t.Cleanup(blobBackend.Close)

	authService := services.NewAuthService(users, provider, logger)
	eventService := services.NewEventService(events, rsvps, users, logger)
	rsvpService := services.NewRSVPService(events, rsvps, invoices, fakeCheckout{}, logger)
	ticketService := services.NewTicketService(events, rsvps, invoices, fakeEmail{}, logger)

	authHandler := NewAuthHandler(authService, logger)
	eventHandler := NewEventHandler(eventService, logger)
	rsvpHandler := NewRSVPHandler(rsvpService, ticketService, logger)
	uploadHandler := NewUploadHandler(clients.NewBlobClient(blobBackend.URL, "", logger), logger)

	authRequired := AuthMiddleware(authService)

	r := gin.New()
	r.Use(CORSMiddleware())

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		eventsGroup := api.Group("/events")
		{
			eventsGroup.GET("", eventHandler.List)
			eventsGroup.GET("/:id", eventHandler.Get)
			eventsGroup.POST("", authRequired, eventHandler.Create)
			eventsGroup.PUT("/:id", authRequired, eventHandler.Update)
			eventsGroup.DELETE("/:id", authRequired, eventHandler.Delete)
			eventsGroup.POST("/:id/rsvp", authRequired, rsvpHandler.Register)
			eventsGroup.POST("/:id/transaction", authRequired, rsvpHandler.ConfirmTransaction)
			eventsGroup.GET("/:id/rsvps", authRequired, rsvpHandler.GuestList)
		}

		rsvpsGroup := api.Group("/rsvps", authRequired)
		{
			rsvpsGroup.GET("", rsvpHandler.Mine)
			rsvpsGroup.POST("/:eventId/send-ticket", rsvpHandler.SendTicket)
		}

		api.GET("/organizer/events", authRequired, eventHandler.Mine)
		api.POST("/upload", authRequired, uploadHandler.Upload)
	}

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signupToken(t *testing.T, r *gin.Engine, externalID string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"externalId": externalID,
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		BearerToken string `json:"bearerToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.BearerToken)
	return resp.BearerToken
}

func createEventID(t *testing.T, r *gin.Engine, token string, price float64) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/events", token, gin.H{
		"title":       "Sphere Launch",
		"description": "Launch party",
		"date":        time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"location":    "Nairobi",
		"category":    "TECH",
		"price":       price,
		"capacity":    10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func TestAPI_SignupLoginMe(t *testing.T) {
	r := newTestRouter(t)

	token := signupToken(t, r, "alice@example.com")

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
	// The bearer credential never appears in a response body.
	assert.NotContains(t, w.Body.String(), token)

	// Duplicate signup conflicts.
	w = doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"externalId": "alice@example.com",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password is a 401.
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"externalId": "alice@example.com",
		"password":   "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_AuthRequired(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/rsvps", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_FreeEventFlow(t *testing.T) {
	r := newTestRouter(t)

	organizer := signupToken(t, r, "organizer@example.com")
	attendee := signupToken(t, r, "attendee@example.com")
	eventID := createEventID(t, r, organizer, 0)

	// Listing is public.
	w := doJSON(t, r, http.MethodGet, "/api/events", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sphere Launch")

	w = doJSON(t, r, http.MethodPost, "/api/events/"+eventID+"/rsvp", attendee, gin.H{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	// Registering twice conflicts.
	w = doJSON(t, r, http.MethodPost, "/api/events/"+eventID+"/rsvp", attendee, gin.H{})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/rsvps", attendee, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CONFIRMED")

	// Only the organizer reads the guest list.
	w = doJSON(t, r, http.MethodGet, "/api/events/"+eventID+"/rsvps", attendee, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/events/"+eventID+"/rsvps", organizer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestAPI_PaidEventFlow(t *testing.T) {
	r := newTestRouter(t)

	organizer := signupToken(t, r, "organizer@example.com")
	attendee := signupToken(t, r, "attendee@example.com")
	eventID := createEventID(t, r, organizer, 50)

	w := doJSON(t, r, http.MethodPost, "/api/events/"+eventID+"/rsvp", attendee, gin.H{
		"originUrl":     "https://sphere.example.com/events",
		"paymentMethod": "mpesa",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reg struct {
		PaymentURL string `json:"paymentUrl"`
		OrderID    string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.OrderID)
	assert.Contains(t, reg.PaymentURL, reg.OrderID)

	// Ticket before payment is a 400.
	w = doJSON(t, r, http.MethodPost, "/api/rsvps/"+eventID+"/send-ticket", attendee, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Payment callback confirms the RSVP.
	w = doJSON(t, r, http.MethodPost, "/api/events/"+eventID+"/transaction", attendee, gin.H{
		"orderId":         reg.OrderID,
		"transactionCode": "TX-98765",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/rsvps/"+eventID+"/send-ticket", attendee, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A second send reports the ticket as already delivered.
	w = doJSON(t, r, http.MethodPost, "/api/rsvps/"+eventID+"/send-ticket", attendee, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"alreadySent":true`)
}

func TestAPI_EventCRUD(t *testing.T) {
	r := newTestRouter(t)

	organizer := signupToken(t, r, "organizer@example.com")
	stranger := signupToken(t, r, "stranger@example.com")
	eventID := createEventID(t, r, organizer, 0)

	update := gin.H{
		"title":       "Renamed",
		"description": "Launch party",
		"date":        time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"location":    "Nairobi",
		"category":    "TECH",
		"capacity":    10,
	}

	w := doJSON(t, r, http.MethodPut, "/api/events/"+eventID, stranger, update)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/events/"+eventID, organizer, update)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Renamed")

	w = doJSON(t, r, http.MethodGet, "/api/organizer/events", organizer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Renamed")

	w = doJSON(t, r, http.MethodDelete, "/api/events/"+eventID, organizer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/events/"+eventID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func uploadFile(t *testing.T, r *gin.Engine, token, filename, contentType string, size int) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPI_Upload(t *testing.T) {
	r := newTestRouter(t)

	token := signupToken(t, r, "uploader@example.com")

	w := uploadFile(t, r, token, "poster.png", "image/png", 128)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success  bool   `json:"success"`
		ImageURL string `json:"imageUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.ImageURL, "uploads")
	assert.Contains(t, resp.ImageURL, ".png")

	// A second upload of the same file gets its own object name.
	w = uploadFile(t, r, token, "poster.png", "image/png", 128)
	require.Equal(t, http.StatusOK, w.Code)
	var second struct {
		ImageURL string `json:"imageUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.NotEqual(t, resp.ImageURL, second.ImageURL)
}

func TestAPI_Upload_Rejections(t *testing.T) {
	r := newTestRouter(t)

	token := signupToken(t, r, "uploader@example.com")

	// Non-image content type.
	w := uploadFile(t, r, token, "notes.txt", "text/plain", 128)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "image")

	// Over the size limit.
	w = uploadFile(t, r, token, "huge.png", "image/png", maxUploadSize+1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "5MB")

	// Uploads require auth like every other write.
	w = uploadFile(t, r, "", "poster.png", "image/png", 128)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_InvalidIDsAndBodies(t *testing.T) {
	r := newTestRouter(t)

	token := signupToken(t, r, "user@example.com")

	w := doJSON(t, r, http.MethodGet, "/api/events/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown category is rejected.
	w = doJSON(t, r, http.MethodPost, "/api/events", token, gin.H{
		"title":       "Mystery",
		"description": "???",
		"date":        time.Now().Add(time.Hour).Format(time.RFC3339),
		"location":    "Nowhere",
		"category":    "MYSTERY",
		"capacity":    5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing transaction code fails binding.
	eventID := createEventID(t, r, token, 50)
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/events/%s/transaction", eventID), token, gin.H{
		"orderId": "order-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
