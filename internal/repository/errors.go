package repository

import "errors"

var (
	// User errors
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when a user with the same external id already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// Event errors
	// ErrEventNotFound is returned when an event is not found
	ErrEventNotFound = errors.New("event not found")

	// RSVP errors
	// ErrRSVPNotFound is returned when an RSVP is not found
	ErrRSVPNotFound = errors.New("rsvp not found")
	// ErrAlreadyRegistered is returned when a user already has an RSVP for an event
	ErrAlreadyRegistered = errors.New("user already registered for event")
	// ErrCapacityExceeded is returned when an event has no confirmed seats left
	ErrCapacityExceeded = errors.New("event capacity reached")

	// Invoice errors
	// ErrInvoiceNotFound is returned when an invoice is not found
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrTicketAlreadySent is returned when the ticket email flag is already set
	ErrTicketAlreadySent = errors.New("ticket email already sent")
)
