package services

import (
	"context"
	"strings"

	"golang.org/x/exp/slices"

	"showroom/apperrors"
	"showroom/auth"
	"showroom/booking/model"
)

// QueryService is the read side of the booking subsystem. It shares the data
// model but is not concurrency-sensitive.
type QueryService struct {
	bookingDao model.BookingDao
}

func NewQueryService(bookingDao model.BookingDao) *QueryService {
	return &QueryService{bookingDao: bookingDao}
}

// ListMine returns the caller's bookings, newest first. Lock artifacts never
// leave this method even if the index were to surface one.
func (s *QueryService) ListMine(ctx context.Context, identity auth.Identity) ([]model.Booking, error) {
	if !identity.IsAuthenticated() {
		return nil, apperrors.Unauthenticated()
	}

	records, err := s.bookingDao.QueryBookingsByUser(ctx, identity.SubjectID)
	if err != nil {
		return nil, apperrors.StoreUnavailable("could not list bookings", err)
	}

	bookings := make([]model.Booking, 0, len(records))
	for _, record := range records {
		if record.RecordType != model.RecordTypeBooking || model.IsLockKey(record.ID) {
			continue
		}
		if record.UserID != identity.SubjectID {
			continue
		}
		bookings = append(bookings, record)
	}

	slices.SortFunc(bookings, func(a, b model.Booking) int {
		return strings.Compare(b.CreatedAt, a.CreatedAt)
	})

	return bookings, nil
}
