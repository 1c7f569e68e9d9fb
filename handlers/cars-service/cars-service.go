package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"showroom/apperrors"
	"showroom/auth"
	carsdb "showroom/cars/db"
	"showroom/cars/model"
	"showroom/cars/services"
	"showroom/config"
	"showroom/dynamoutils"
	"showroom/lambdautils"
	"showroom/utils"
)

var (
	logger         *zap.Logger
	catalogService *services.CatalogService
)

func init() {
	cfg := config.Load()
	logger = utils.NewLogger(cfg.IsProduction())
	client := dynamoutils.CreateClient(cfg)

	carDao := carsdb.NewCarDynDao(client, cfg.CarsTable)
	catalogService = services.NewCatalogService(carDao, logger)
}

func handler(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	identity := auth.Resolve(lambdautils.ClaimsBag(event))

	method := event.RequestContext.HTTP.Method
	path := event.RequestContext.HTTP.Path

	norm := path
	if strings.HasPrefix(path, "/cars/") {
		norm = "/cars/{id}"
	}
	carID := strings.TrimPrefix(path, "/cars/")

	switch method + " " + norm {
	case "GET /cars":
		return listCars(ctx), nil
	case "GET /cars/{id}":
		return getCar(ctx, carID), nil
	case "POST /cars":
		return createCar(ctx, identity, event.Body), nil
	case "PATCH /cars/{id}":
		return updateCar(ctx, identity, carID, event.Body), nil
	case "DELETE /cars/{id}":
		return deleteCar(ctx, identity, carID), nil
	default:
		return lambdautils.JSONResponse(404, apperrors.ErrorResponse{Error: "route_not_found", Message: method + " " + path}), nil
	}
}

func listCars(ctx context.Context) events.APIGatewayV2HTTPResponse {
	cars, err := catalogService.ListCars(ctx)
	if err != nil {
		return lambdautils.ErrorResponse(err)
	}
	return lambdautils.JSONResponse(200, cars)
}

func getCar(ctx context.Context, carID string) events.APIGatewayV2HTTPResponse {
	car, err := catalogService.GetCar(ctx, carID)
	if err != nil {
		return lambdautils.ErrorResponse(err)
	}
	return lambdautils.JSONResponse(200, car)
}

func createCar(ctx context.Context, identity auth.Identity, body string) events.APIGatewayV2HTTPResponse {
	var car model.Car
	if body != "" {
		if err := json.Unmarshal([]byte(body), &car); err != nil {
			return lambdautils.ErrorResponse(apperrors.InvalidRequest("invalid json"))
		}
	}

	created, err := catalogService.CreateCar(ctx, identity, car)
	if err != nil {
		return lambdautils.ErrorResponse(err)
	}
	return lambdautils.JSONResponse(201, created)
}

func updateCar(ctx context.Context, identity auth.Identity, carID string, body string) events.APIGatewayV2HTTPResponse {
	var fields map[string]any
	if err := json.Unmarshal([]byte(orEmptyObject(body)), &fields); err != nil {
		return lambdautils.ErrorResponse(apperrors.InvalidRequest("invalid json"))
	}

	car, err := catalogService.UpdateCar(ctx, identity, carID, fields)
	if err != nil {
		return lambdautils.ErrorResponse(err)
	}
	return lambdautils.JSONResponse(200, car)
}

func deleteCar(ctx context.Context, identity auth.Identity, carID string) events.APIGatewayV2HTTPResponse {
	if err := catalogService.DeleteCar(ctx, identity, carID); err != nil {
		return lambdautils.ErrorResponse(err)
	}
	return lambdautils.JSONResponse(204, struct{}{})
}

func orEmptyObject(body string) string {
	if body == "" {
		return "{}"
	}
	return body
}

func main() {
	lambda.Start(handler)
}
