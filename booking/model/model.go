package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking rows and slot-lock rows share one table, told apart by record type
// and by the lock-key prefix.
const (
	RecordTypeBooking  = "booking"
	RecordTypeSlotLock = "slotLock"

	LockKeyPrefix = "LOCK#"
)

// Booking is the durable reservation record. It is never physically deleted;
// cancellation is a status change.
type Booking struct {
	ID         string        `json:"bookingId" dynamodbav:"id"`
	RecordType string        `json:"-" dynamodbav:"recordType"`
	UserID     string        `json:"userId" dynamodbav:"userId"`
	CarID      string        `json:"carId" dynamodbav:"carId"`
	SlotTime   string        `json:"slotTime" dynamodbav:"slotTime"`
	Status     BookingStatus `json:"status" dynamodbav:"status"`
	CreatedAt  string        `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt  string        `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// SlotLock marks a (car, slot) pair as taken. It exists exactly as long as a
// non-cancelled booking holds the pair and is never exposed to callers.
type SlotLock struct {
	ID         string `dynamodbav:"id"`
	RecordType string `dynamodbav:"recordType"`
	CarID      string `dynamodbav:"carId"`
	SlotTime   string `dynamodbav:"slotTime"`
	BookingID  string `dynamodbav:"bookingId"`
}

// LockKey derives the lock row key from the slot alone, so every request
// targeting the same (car, slot) pair contends for the same row.
func LockKey(carID, slotTime string) string {
	return LockKeyPrefix + carID + "#" + slotTime
}

func IsLockKey(id string) bool {
	return strings.HasPrefix(id, LockKeyPrefix)
}

func NewSlotLock(carID, slotTime, bookingID string) SlotLock {
	return SlotLock{
		ID:         LockKey(carID, slotTime),
		RecordType: RecordTypeSlotLock,
		CarID:      carID,
		SlotTime:   slotTime,
		BookingID:  bookingID,
	}
}

type CreateBookingRequest struct {
	CarID    string `json:"carId"`
	SlotTime string `json:"slotTime"`
}

type UpdateBookingRequest struct {
	Status string `json:"status"`
}

func ParseStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return BookingStatus(s), true
	}
	return "", false
}

// CanTransition encodes the status state machine: pending is initial,
// cancelled is terminal, and there is no path back to pending once left.
// Same-status writes are allowed so that repeated cancellation stays
// idempotent.
func CanTransition(from, to BookingStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	default:
		return false
	}
}

var slotTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?Z$`)

// ValidSlotTime accepts only the fixed-offset "Z" ISO-8601 form, with
// optional fractional seconds, and requires it to name a real instant.
func ValidSlotTime(s string) bool {
	if !slotTimePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}

// Store-level outcomes the services translate into the error taxonomy.
var (
	ErrSlotTaken       = errors.New("slot lock already exists")
	ErrBookingIDTaken  = errors.New("booking id already exists")
	ErrBookingNotFound = errors.New("booking does not exist")
)
