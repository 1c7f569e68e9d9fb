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
	bookingdb "showroom/booking/db"
	"showroom/booking/model"
	"showroom/booking/services"
	carsdb "showroom/cars/db"
	"showroom/config"
	"showroom/dynamoutils"
	"showroom/lambdautils"
	"showroom/utils"
)

var (
	logger           *zap.Logger
	admissionService *services.AdmissionService
	lifecycleService *services.LifecycleService
	queryService     *services.QueryService
)

func init() {
	cfg := config.Load()
	logger = utils.NewLogger(cfg.IsProduction())
	client := dynamoutils.CreateClient(cfg)

	bookingDao := bookingdb.NewBookingDynDao(client, cfg.BookingsTable)

	// The existence check is advisory; without a cars table it is skipped.
	var carChecker model.CarChecker
	if cfg.CarsTable != "" {
		carChecker = carsdb.NewCarDynDao(client, cfg.CarsTable)
	}

	admissionService = services.NewAdmissionService(bookingDao, carChecker, logger)
	lifecycleService = services.NewLifecycleService(bookingDao, logger)
	queryService = services.NewQueryService(bookingDao)
}

func handler(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	identity := auth.Resolve(lambdautils.ClaimsBag(event))

	method := event.RequestContext.HTTP.Method
	path := event.RequestContext.HTTP.Path

	// /bookings/<id> routes as /bookings/{id} unless the segment is "me".
	norm := path
	if strings.HasPrefix(path, "/bookings/") && path != "/bookings/me" {
		norm = "/bookings/{id}"
	}

	switch method + " " + norm {
	case "POST /bookings":
		return createBooking(ctx, identity, event.Body), nil
	case "GET /bookings/me":
		return listMyBookings(ctx, identity), nil
	case "PATCH /bookings/{id}":
		return updateBooking(ctx, identity, strings.TrimPrefix(path, "/bookings/"), event.Body), nil
	default:
		return lambdautils.JSONResponse(404, apperrors.ErrorResponse{Error: "route_not_found", Message: method + " " + path}), nil
	}
}

func createBooking(ctx context.Context, identity auth.Identity, body string) events.APIGatewayV2HTTPResponse {
	var request model.CreateBookingRequest
	if err := json.Unmarshal([]byte(orEmptyObject(body)), &request); err != nil {
		return lambdautils.ErrorResponse(apperrors.InvalidRequest("invalid json"))
	}

	booking, err := admissionService.AdmitBooking(ctx, identity, request)
	if err != nil {
		return lambdautils.ErrorResponse(err)
	}
	return lambdautils.JSONResponse(201, booking)
}

func listMyBookings(ctx context.Context, identity auth.Identity) events.APIGatewayV2HTTPResponse {
	bookings, err := queryService.ListMine(ctx, identity)
	if err != nil {
		return lambdautils.ErrorResponse(err)
	}
	return lambdautils.JSONResponse(200, bookings)
}

func updateBooking(ctx context.Context, identity auth.Identity, bookingID string, body string) events.APIGatewayV2HTTPResponse {
	var request model.UpdateBookingRequest
	if err := json.Unmarshal([]byte(orEmptyObject(body)), &request); err != nil {
		return lambdautils.ErrorResponse(apperrors.InvalidRequest("invalid json"))
	}
	if request.Status == "" {
		return lambdautils.ErrorResponse(apperrors.InvalidRequest("status is required"))
	}

	booking, err := lifecycleService.UpdateStatus(ctx, identity, bookingID, request.Status)
	if err != nil {
		return lambdautils.ErrorResponse(err)
	}
	return lambdautils.JSONResponse(200, booking)
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
