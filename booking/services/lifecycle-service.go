package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"showroom/apperrors"
	"showroom/auth"
	"showroom/booking/model"
)

// LifecycleService applies authorized status transitions to an existing
// booking and releases its slot lock on cancellation.
type LifecycleService struct {
	bookingDao model.BookingDao
	logger     *zap.Logger
}

func NewLifecycleService(bookingDao model.BookingDao, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{bookingDao: bookingDao, logger: logger}
}

func (s *LifecycleService) UpdateStatus(ctx context.Context, identity auth.Identity, bookingID string, rawStatus string) (model.Booking, error) {
	if !identity.IsAuthenticated() {
		return model.Booking{}, apperrors.Unauthenticated()
	}
	if bookingID == "" {
		return model.Booking{}, apperrors.InvalidRequest("missing booking id")
	}
	newStatus, ok := model.ParseStatus(rawStatus)
	if !ok {
		return model.Booking{}, apperrors.InvalidRequest("status must be one of pending, confirmed, cancelled")
	}

	booking, found, err := s.bookingDao.GetBooking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, apperrors.StoreUnavailable("could not load booking", err)
	}
	// Lock rows live in the same key space; never treat one as a booking.
	if !found || booking.RecordType != model.RecordTypeBooking || model.IsLockKey(bookingID) {
		return model.Booking{}, apperrors.NotFound("booking")
	}

	if !identity.IsAdmin {
		if booking.UserID != identity.SubjectID {
			return model.Booking{}, apperrors.Forbidden("not your booking")
		}
		if newStatus != model.StatusCancelled {
			return model.Booking{}, apperrors.Forbidden("only cancellation is allowed")
		}
	}

	if !model.CanTransition(booking.Status, newStatus) {
		return model.Booking{}, apperrors.InvalidRequest("cannot transition from " + string(booking.Status) + " to " + string(newStatus))
	}

	// Repeated cancellation: nothing to write, nothing to delete again.
	if booking.Status == newStatus {
		return booking, nil
	}

	updated, err := s.bookingDao.UpdateBookingStatus(ctx, bookingID, newStatus, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if errors.Is(err, model.ErrBookingNotFound) {
			return model.Booking{}, apperrors.NotFound("booking")
		}
		return model.Booking{}, apperrors.StoreUnavailable("could not update booking", err)
	}

	// The cancelled status is authoritative from here on. Releasing the lock
	// is best-effort; an orphaned lock is picked up by the reconciler.
	if newStatus == model.StatusCancelled {
		lockKey := model.LockKey(booking.CarID, booking.SlotTime)
		if err := s.bookingDao.DeleteSlotLock(ctx, lockKey); err != nil {
			s.logger.Warn("failed to release slot lock after cancellation",
				zap.String("bookingId", bookingID),
				zap.String("lockKey", lockKey),
				zap.Error(err))
		}
	}

	return updated, nil
}
