package models

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Event categories
const (
	CategoryTech          = "TECH"
	CategoryEntertainment = "ENTERTAINMENT"
	CategorySports        = "SPORTS"
	CategoryArts          = "ARTS"
	CategoryBusiness      = "BUSINESS"
	CategoryEducation     = "EDUCATION"
	CategoryOther         = "OTHER"
)

// ValidCategory reports whether c is one of the known event categories
func ValidCategory(c string) bool {
	switch c {
	case CategoryTech, CategoryEntertainment, CategorySports,
		CategoryArts, CategoryBusiness, CategoryEducation, CategoryOther:
		return true
	}
	return false
}

// Event represents a listed event. Price is stored in the reference
// currency; clients convert for display using the exchange-rate endpoint.
type Event struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	Location    string    `json:"location" db:"location"`
	IsOnline    bool      `json:"isOnline" db:"is_online"`
	Category    string    `json:"category" db:"category"`
	Price       float64   `json:"price" db:"price"`
	Capacity    int       `json:"capacity" db:"capacity"`
	OrganizerID uuid.UUID `json:"organizerId" db:"organizer_id"`
	Image       string    `json:"image,omitempty" db:"image"`
	ShareToken  string    `json:"shareToken" db:"share_token"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// EventRequest represents the data needed to create or update an event
type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	IsOnline    bool      `json:"isOnline"`
	Category    string    `json:"category" binding:"required"`
	Price       float64   `json:"price" binding:"gte=0"`
	Capacity    int       `json:"capacity" binding:"required,gt=0"`
	Image       string    `json:"image"`
}

// EventResponse is an event plus the fields derived for display
type EventResponse struct {
	Event
	Organizer   UserResponse `json:"organizer"`
	Confirmed   int          `json:"confirmed"`
	CalendarURL string       `json:"calendarUrl"`
}

// CalendarURL builds a Google Calendar render link for the event. Events
// without an explicit end default to a two hour slot.
func (e *Event) CalendarURL() string {
	const stamp = "20060102T150405Z"
	start := e.Date.UTC()
	end := start.Add(2 * time.Hour)

	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", e.Title)
	params.Set("dates", start.Format(stamp)+"/"+end.Format(stamp))
	params.Set("details", e.Description)
	params.Set("location", e.Location)

	return "https://calendar.google.com/calendar/render?" + params.Encode()
}
