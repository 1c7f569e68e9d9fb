package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"showroom/apperrors"
	"showroom/auth"
	"showroom/cars/model"
)

var (
	admin    = auth.Identity{SubjectID: "admin-1", IsAdmin: true}
	customer = auth.Identity{SubjectID: "user-1"}
)

type fakeCarDao struct {
	mu   sync.Mutex
	cars map[string]model.Car
	fail error
}

func newFakeCarDao() *fakeCarDao {
	return &fakeCarDao{cars: map[string]model.Car{}}
}

func (dao *fakeCarDao) ListCars(_ context.Context, _ int32) ([]model.Car, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	if dao.fail != nil {
		return nil, dao.fail
	}
	var cars []model.Car
	for _, car := range dao.cars {
		cars = append(cars, car)
	}
	return cars, nil
}

func (dao *fakeCarDao) GetCar(_ context.Context, carID string) (model.Car, bool, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	if dao.fail != nil {
		return model.Car{}, false, dao.fail
	}
	car, found := dao.cars[carID]
	return car, found, nil
}

func (dao *fakeCarDao) CreateCar(_ context.Context, car model.Car) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	if dao.fail != nil {
		return dao.fail
	}
	dao.cars[car.CarID] = car
	return nil
}

func (dao *fakeCarDao) UpdateCar(_ context.Context, carID string, fields map[string]any) (model.Car, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	if dao.fail != nil {
		return model.Car{}, dao.fail
	}
	car, found := dao.cars[carID]
	if !found {
		return model.Car{}, model.ErrCarNotFound
	}
	for field, value := range fields {
		switch field {
		case "make":
			car.Make = value.(string)
		case "price":
			car.Price = value.(float64)
		case "updatedAt":
			car.UpdatedAt = value.(string)
		}
	}
	dao.cars[carID] = car
	return car, nil
}

func (dao *fakeCarDao) DeleteCar(_ context.Context, carID string) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	if dao.fail != nil {
		return dao.fail
	}
	delete(dao.cars, carID)
	return nil
}

func TestCreateCarAdminOnly(t *testing.T) {
	dao := newFakeCarDao()
	service := NewCatalogService(dao, zap.NewNop())

	_, err := service.CreateCar(context.Background(), customer, model.Car{Make: "Fiat"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)
	assert.Empty(t, dao.cars)

	car, err := service.CreateCar(context.Background(), admin, model.Car{Make: "Fiat", Model: "Panda"})
	require.NoError(t, err)
	assert.NotEmpty(t, car.CarID, "id is assigned server-side")
	assert.NotEmpty(t, car.CreatedAt)
	assert.Len(t, dao.cars, 1)
}

func TestGetCar(t *testing.T) {
	dao := newFakeCarDao()
	dao.cars["car-7"] = model.Car{CarID: "car-7", Make: "Fiat"}
	service := NewCatalogService(dao, zap.NewNop())

	car, err := service.GetCar(context.Background(), "car-7")
	require.NoError(t, err)
	assert.Equal(t, "Fiat", car.Make)

	_, err = service.GetCar(context.Background(), "car-ghost")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "got %v", err)

	_, err = service.GetCar(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidRequest), "got %v", err)
}

func TestListCarsNeverNil(t *testing.T) {
	service := NewCatalogService(newFakeCarDao(), zap.NewNop())

	cars, err := service.ListCars(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cars)
	assert.Empty(t, cars)
}

func TestUpdateCarAllowlist(t *testing.T) {
	dao := newFakeCarDao()
	dao.cars["car-7"] = model.Car{CarID: "car-7", Make: "Fiat", Price: 100}
	service := NewCatalogService(dao, zap.NewNop())

	car, err := service.UpdateCar(context.Background(), admin, "car-7", map[string]any{
		"price": 120.0,
		"carId": "car-hijacked", // not updatable, must be dropped
	})

	require.NoError(t, err)
	assert.Equal(t, "car-7", car.CarID)
	assert.Equal(t, 120.0, car.Price)
	assert.NotEmpty(t, car.UpdatedAt)
}

func TestUpdateCarRejectsEmptyPatch(t *testing.T) {
	dao := newFakeCarDao()
	dao.cars["car-7"] = model.Car{CarID: "car-7"}
	service := NewCatalogService(dao, zap.NewNop())

	_, err := service.UpdateCar(context.Background(), admin, "car-7", map[string]any{"carId": "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidRequest), "got %v", err)
}

func TestUpdateCarNotFound(t *testing.T) {
	service := NewCatalogService(newFakeCarDao(), zap.NewNop())

	_, err := service.UpdateCar(context.Background(), admin, "car-ghost", map[string]any{"make": "Fiat"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "got %v", err)
}

func TestDeleteCarAdminOnly(t *testing.T) {
	dao := newFakeCarDao()
	dao.cars["car-7"] = model.Car{CarID: "car-7"}
	service := NewCatalogService(dao, zap.NewNop())

	err := service.DeleteCar(context.Background(), customer, "car-7")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "got %v", err)
	assert.Len(t, dao.cars, 1)

	require.NoError(t, service.DeleteCar(context.Background(), admin, "car-7"))
	assert.Empty(t, dao.cars)
}

func TestCatalogStoreFailure(t *testing.T) {
	dao := newFakeCarDao()
	dao.fail = errors.New("connection reset")
	service := NewCatalogService(dao, zap.NewNop())

	_, err := service.ListCars(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreUnavailable), "got %v", err)
}
