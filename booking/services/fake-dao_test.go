package services

import (
	"context"
	"errors"
	"sync"

	"showroom/booking/model"
)

// fakeBookingDao implements the store contract in memory: single-key
// conditional semantics under one mutex, so the transactional dual insert is
// atomic exactly the way the real store promises.
type fakeBookingDao struct {
	mu       sync.Mutex
	bookings map[string]model.Booking
	locks    map[string]model.SlotLock

	failCreate      error
	failUpdate      error
	failQuery       error
	failDeleteLock  error
	lockDeleteCalls int
}

func newFakeBookingDao() *fakeBookingDao {
	return &fakeBookingDao{
		bookings: map[string]model.Booking{},
		locks:    map[string]model.SlotLock{},
	}
}

func (dao *fakeBookingDao) CreateBookingWithLock(_ context.Context, booking model.Booking, lock model.SlotLock) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	if dao.failCreate != nil {
		return dao.failCreate
	}
	if _, taken := dao.locks[lock.ID]; taken {
		return model.ErrSlotTaken
	}
	if _, taken := dao.bookings[booking.ID]; taken {
		return model.ErrBookingIDTaken
	}
	dao.locks[lock.ID] = lock
	dao.bookings[booking.ID] = booking
	return nil
}

func (dao *fakeBookingDao) GetBooking(_ context.Context, id string) (model.Booking, bool, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	if booking, found := dao.bookings[id]; found {
		return booking, true, nil
	}
	// Lock rows share the key space; fetching one yields a non-booking record.
	if lock, found := dao.locks[id]; found {
		return model.Booking{ID: lock.ID, RecordType: model.RecordTypeSlotLock}, true, nil
	}
	return model.Booking{}, false, nil
}

func (dao *fakeBookingDao) UpdateBookingStatus(_ context.Context, id string, status model.BookingStatus, updatedAt string) (model.Booking, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	if dao.failUpdate != nil {
		return model.Booking{}, dao.failUpdate
	}
	booking, found := dao.bookings[id]
	if !found {
		return model.Booking{}, model.ErrBookingNotFound
	}
	booking.Status = status
	booking.UpdatedAt = updatedAt
	dao.bookings[id] = booking
	return booking, nil
}

func (dao *fakeBookingDao) DeleteSlotLock(_ context.Context, lockID string) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	dao.lockDeleteCalls++
	if dao.failDeleteLock != nil {
		return dao.failDeleteLock
	}
	delete(dao.locks, lockID)
	return nil
}

func (dao *fakeBookingDao) QueryBookingsByUser(_ context.Context, userID string) ([]model.Booking, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	if dao.failQuery != nil {
		return nil, dao.failQuery
	}
	var bookings []model.Booking
	for _, booking := range dao.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

func (dao *fakeBookingDao) ScanSlotLocks(_ context.Context) ([]model.SlotLock, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	var locks []model.SlotLock
	for _, lock := range dao.locks {
		locks = append(locks, lock)
	}
	return locks, nil
}

func (dao *fakeBookingDao) bookingCount() int {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	return len(dao.bookings)
}

func (dao *fakeBookingDao) lockCount() int {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	return len(dao.locks)
}

// idCollidingDao makes the first create attempts fail with an id collision to
// exercise the fresh-id retry path.
type idCollidingDao struct {
	*fakeBookingDao
	mu         sync.Mutex
	collisions int
	attempts   int
}

func (dao *idCollidingDao) CreateBookingWithLock(ctx context.Context, booking model.Booking, lock model.SlotLock) error {
	dao.mu.Lock()
	dao.attempts++
	collide := dao.attempts <= dao.collisions
	dao.mu.Unlock()

	if collide {
		return model.ErrBookingIDTaken
	}
	return dao.fakeBookingDao.CreateBookingWithLock(ctx, booking, lock)
}

type fakeCarChecker struct {
	exists bool
	err    error
	calls  int
}

func (c *fakeCarChecker) CarExists(context.Context, string) (bool, error) {
	c.calls++
	return c.exists, c.err
}

var errStoreDown = errors.New("connection reset")
