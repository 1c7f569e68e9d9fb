package model

import "context"

type BookingDao interface {
	// CreateBookingWithLock atomically inserts the booking row and its slot
	// lock. Both inserts are conditional on their key being absent; the whole
	// transaction fails if either condition trips. Returns ErrSlotTaken or
	// ErrBookingIDTaken on the respective condition failure.
	CreateBookingWithLock(ctx context.Context, booking Booking, lock SlotLock) error

	// GetBooking fetches any record by key, lock rows included; callers are
	// expected to check the record type.
	GetBooking(ctx context.Context, id string) (Booking, bool, error)

	// UpdateBookingStatus writes the status and returns the updated row.
	// Returns ErrBookingNotFound if the row vanished.
	UpdateBookingStatus(ctx context.Context, id string, status BookingStatus, updatedAt string) (Booking, error)

	DeleteSlotLock(ctx context.Context, lockID string) error

	// QueryBookingsByUser reads through the userId secondary index.
	QueryBookingsByUser(ctx context.Context, userID string) ([]Booking, error)

	// ScanSlotLocks lists every lock row; only the reconciler uses it.
	ScanSlotLocks(ctx context.Context) ([]SlotLock, error)
}

// CarChecker is the advisory car-existence collaborator. A failing check must
// never block admission; only a successful check reporting absence may.
type CarChecker interface {
	CarExists(ctx context.Context, carID string) (bool, error)
}
