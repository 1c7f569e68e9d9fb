package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"showroom/apperrors"
	"showroom/auth"
	"showroom/cars/model"
)

const listLimit = 100

// CatalogService is the cars CRUD surface. Reads are public, mutations are
// admin-only.
type CatalogService struct {
	carDao model.CarDao
	logger *zap.Logger
}

func NewCatalogService(carDao model.CarDao, logger *zap.Logger) *CatalogService {
	return &CatalogService{carDao: carDao, logger: logger}
}

func (s *CatalogService) ListCars(ctx context.Context) ([]model.Car, error) {
	cars, err := s.carDao.ListCars(ctx, listLimit)
	if err != nil {
		return nil, apperrors.StoreUnavailable("could not list cars", err)
	}
	if cars == nil {
		cars = []model.Car{}
	}
	return cars, nil
}

func (s *CatalogService) GetCar(ctx context.Context, carID string) (model.Car, error) {
	if carID == "" {
		return model.Car{}, apperrors.InvalidRequest("missing car id")
	}
	car, found, err := s.carDao.GetCar(ctx, carID)
	if err != nil {
		return model.Car{}, apperrors.StoreUnavailable("could not load car", err)
	}
	if !found {
		return model.Car{}, apperrors.NotFound("car")
	}
	return car, nil
}

func (s *CatalogService) CreateCar(ctx context.Context, identity auth.Identity, car model.Car) (model.Car, error) {
	if !identity.IsAdmin {
		return model.Car{}, apperrors.Forbidden("admin group required")
	}

	car.CarID = uuid.NewString()
	car.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.carDao.CreateCar(ctx, car); err != nil {
		return model.Car{}, apperrors.StoreUnavailable("could not store car", err)
	}
	s.logger.Info("car created", zap.String("carId", car.CarID))
	return car, nil
}

func (s *CatalogService) UpdateCar(ctx context.Context, identity auth.Identity, carID string, fields map[string]any) (model.Car, error) {
	if !identity.IsAdmin {
		return model.Car{}, apperrors.Forbidden("admin group required")
	}
	if carID == "" {
		return model.Car{}, apperrors.InvalidRequest("missing car id")
	}

	patch := make(map[string]any, len(fields))
	for field, value := range fields {
		if _, ok := model.UpdatableFields[field]; ok {
			patch[field] = value
		}
	}
	if len(patch) == 0 {
		return model.Car{}, apperrors.InvalidRequest("no fields to update")
	}
	patch["updatedAt"] = time.Now().UTC().Format(time.RFC3339)

	car, err := s.carDao.UpdateCar(ctx, carID, patch)
	if err != nil {
		if errors.Is(err, model.ErrCarNotFound) {
			return model.Car{}, apperrors.NotFound("car")
		}
		return model.Car{}, apperrors.StoreUnavailable("could not update car", err)
	}
	return car, nil
}

func (s *CatalogService) DeleteCar(ctx context.Context, identity auth.Identity, carID string) error {
	if !identity.IsAdmin {
		return apperrors.Forbidden("admin group required")
	}
	if carID == "" {
		return apperrors.InvalidRequest("missing car id")
	}
	if err := s.carDao.DeleteCar(ctx, carID); err != nil {
		return apperrors.StoreUnavailable("could not delete car", err)
	}
	return nil
}
