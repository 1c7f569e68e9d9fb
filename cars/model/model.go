package model

import (
	"context"
	"errors"
)

// Car is a catalog entry. Images live in object storage; only the key is
// stored here.
type Car struct {
	CarID       string  `json:"carId" dynamodbav:"carId"`
	Make        string  `json:"make,omitempty" dynamodbav:"make,omitempty"`
	Model       string  `json:"model,omitempty" dynamodbav:"model,omitempty"`
	Year        int     `json:"year,omitempty" dynamodbav:"year,omitempty"`
	Price       float64 `json:"price,omitempty" dynamodbav:"price,omitempty"`
	Description string  `json:"description,omitempty" dynamodbav:"description,omitempty"`
	ImageKey    string  `json:"imageKey,omitempty" dynamodbav:"imageKey,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty" dynamodbav:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// UpdatableFields is the allowlist for PATCH bodies; anything else in the
// payload is dropped.
var UpdatableFields = map[string]struct{}{
	"make":        {},
	"model":       {},
	"year":        {},
	"price":       {},
	"description": {},
	"imageKey":    {},
}

type CarDao interface {
	ListCars(ctx context.Context, limit int32) ([]Car, error)
	GetCar(ctx context.Context, carID string) (Car, bool, error)
	CreateCar(ctx context.Context, car Car) error
	UpdateCar(ctx context.Context, carID string, fields map[string]any) (Car, error)
	DeleteCar(ctx context.Context, carID string) error
}

// ErrCarNotFound is the store-level outcome for updates against a missing
// car row.
var ErrCarNotFound = errors.New("car does not exist")
