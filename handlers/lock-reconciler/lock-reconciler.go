package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	bookingdb "showroom/booking/db"
	"showroom/booking/model"
	"showroom/config"
	"showroom/dynamoutils"
	"showroom/utils"
)

// The reconciler is the out-of-band cleanup for the one deliberately leaky
// spot in the cancellation protocol: a cancelled booking whose lock delete
// failed leaves an orphaned lock row that would block the slot forever.

var (
	logger     *zap.Logger
	bookingDao *bookingdb.BookingDynDao
)

type ReconcileReport struct {
	ScannedLocks  int `json:"scannedLocks"`
	OrphanedLocks int `json:"orphanedLocks"`
	DeletedLocks  int `json:"deletedLocks"`
}

func init() {
	cfg := config.Load()
	logger = utils.NewLogger(cfg.IsProduction())
	bookingDao = bookingdb.NewBookingDynDao(dynamoutils.CreateClient(cfg), cfg.BookingsTable)
}

func handler(ctx context.Context) (ReconcileReport, error) {
	locks, err := bookingDao.ScanSlotLocks(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}

	report := ReconcileReport{ScannedLocks: len(locks)}
	for _, lock := range locks {
		booking, found, err := bookingDao.GetBooking(ctx, lock.BookingID)
		if err != nil {
			logger.Warn("could not load booking for lock",
				zap.String("lockKey", lock.ID), zap.Error(err))
			continue
		}
		if found && booking.Status != model.StatusCancelled {
			continue
		}

		report.OrphanedLocks++
		retrier := utils.NewDefaultRetrier[struct{}]()
		_, err = retrier.DoWithReturn(func() (struct{}, error) {
			return struct{}{}, bookingDao.DeleteSlotLock(ctx, lock.ID)
		})
		if err != nil {
			logger.Warn("could not delete orphaned lock",
				zap.String("lockKey", lock.ID), zap.Error(err))
			continue
		}
		report.DeletedLocks++
		logger.Info("orphaned lock deleted",
			zap.String("lockKey", lock.ID),
			zap.String("bookingId", lock.BookingID))
	}

	return report, nil
}

func main() {
	lambda.Start(handler)
}
