package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"showroom/apperrors"
	"showroom/auth"
	"showroom/booking/model"
	"showroom/utils"
)

// A booking-id collision is a near-impossible uuid clash; a fresh id fixes
// it, so a couple of retries is plenty.
const maxAdmissionAttempts = 3

// AdmissionService turns a reservation request into a durable, conflict-free
// booking. All slot exclusivity is delegated to the store's conditional
// transaction; the service itself holds no state between calls.
type AdmissionService struct {
	bookingDao model.BookingDao
	carChecker model.CarChecker
	logger     *zap.Logger
}

// NewAdmissionService builds the service. carChecker may be nil, in which
// case the advisory existence check is skipped entirely.
func NewAdmissionService(bookingDao model.BookingDao, carChecker model.CarChecker, logger *zap.Logger) *AdmissionService {
	return &AdmissionService{bookingDao: bookingDao, carChecker: carChecker, logger: logger}
}

func (s *AdmissionService) AdmitBooking(ctx context.Context, identity auth.Identity, request model.CreateBookingRequest) (model.Booking, error) {
	if !identity.IsAuthenticated() {
		return model.Booking{}, apperrors.Unauthenticated()
	}
	if request.CarID == "" {
		return model.Booking{}, apperrors.InvalidRequest("carId is required")
	}
	if !model.ValidSlotTime(request.SlotTime) {
		return model.Booking{}, apperrors.InvalidRequest("slotTime must be ISO UTC, e.g. 2025-09-08T21:00:00Z")
	}

	// Advisory only: a check that errors is waved through, a check that
	// succeeds and reports a missing car rejects the request. Only the lock
	// row decides uniqueness.
	if s.carChecker != nil {
		exists, err := s.carChecker.CarExists(ctx, request.CarID)
		if err != nil {
			s.logger.Warn("car existence check failed, admitting anyway",
				zap.String("carId", request.CarID), zap.Error(err))
		} else if !exists {
			return model.Booking{}, apperrors.InvalidRequest("unknown carId")
		}
	}

	retrier := utils.NewRetrier[model.Booking](maxAdmissionAttempts, 10*time.Millisecond, 100*time.Millisecond,
		func(err error) bool { return errors.Is(err, model.ErrBookingIDTaken) })

	booking, err := retrier.DoWithReturn(func() (model.Booking, error) {
		candidate := model.Booking{
			ID:         uuid.NewString(),
			RecordType: model.RecordTypeBooking,
			UserID:     identity.SubjectID,
			CarID:      request.CarID,
			SlotTime:   request.SlotTime,
			Status:     model.StatusPending,
			CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		lock := model.NewSlotLock(request.CarID, request.SlotTime, candidate.ID)

		if err := s.bookingDao.CreateBookingWithLock(ctx, candidate, lock); err != nil {
			return model.Booking{}, err
		}
		return candidate, nil
	})

	switch {
	case err == nil:
		s.logger.Info("booking admitted",
			zap.String("bookingId", booking.ID),
			zap.String("carId", booking.CarID),
			zap.String("slotTime", booking.SlotTime))
		return booking, nil
	case errors.Is(err, model.ErrSlotTaken), errors.Is(err, model.ErrBookingIDTaken):
		return model.Booking{}, apperrors.SlotUnavailable(request.CarID, request.SlotTime)
	default:
		return model.Booking{}, apperrors.StoreUnavailable("could not store booking", err)
	}
}
