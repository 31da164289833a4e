package models

import "fmt"

// ValidationError indicates a request failed input validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CapacityError indicates a trip does not have enough free seats
type CapacityError struct {
	BoatID    int64
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats on boat %d: requested %d, available %d", e.BoatID, e.Requested, e.Available)
}

// TransitionError indicates a booking is in the wrong state for an operation
type TransitionError struct {
	BookingID string
	Current   BookingStatus
	Requested BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking %s cannot move from %s to %s", e.BookingID, e.Current, e.Requested)
}

// CancellationWindowError indicates the cancellation cutoff has passed
type CancellationWindowError struct {
	BookingID string
	Cutoff    string
}

func (e *CancellationWindowError) Error() string {
	return fmt.Sprintf("booking %s can no longer be cancelled: less than %s before departure", e.BookingID, e.Cutoff)
}

// RateNotFoundError indicates no price is configured for a boat and duration
type RateNotFoundError struct {
	BoatID        int64
	DurationHours int
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("no rate configured for boat %d and duration %dh", e.BoatID, e.DurationHours)
}

// NotFoundError indicates a record does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// GatewayError indicates the payment gateway rejected or failed a request
type GatewayError struct {
	Operation string
	Code      string
	Message   string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment gateway %s failed (code %s): %s", e.Operation, e.Code, e.Message)
	}
	return fmt.Sprintf("payment gateway %s failed: %s", e.Operation, e.Message)
}
