package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"showroom/apperrors"
	"showroom/auth"
	"showroom/config"
	"showroom/dynamoutils"
	"showroom/lambdautils"
	"showroom/users/db"
	"showroom/users/services"
	"showroom/utils"
)

var (
	logger         *zap.Logger
	profileService *services.ProfileService
)

func init() {
	cfg := config.Load()
	logger = utils.NewLogger(cfg.IsProduction())
	client := dynamoutils.CreateClient(cfg)

	userDao := db.NewUserDynDao(client, cfg.UsersTable)
	profileService = services.NewProfileService(userDao, logger)
}

func handler(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	identity := auth.Resolve(lambdautils.ClaimsBag(event))

	method := event.RequestContext.HTTP.Method
	path := event.RequestContext.HTTP.Path

	switch method + " " + path {
	case "GET /users/me":
		profile, err := profileService.GetMe(ctx, identity)
		if err != nil {
			return lambdautils.ErrorResponse(err), nil
		}
		return lambdautils.JSONResponse(200, profile), nil
	case "PATCH /users/me":
		var fields map[string]any
		body := event.Body
		if body == "" {
			body = "{}"
		}
		if err := json.Unmarshal([]byte(body), &fields); err != nil {
			return lambdautils.ErrorResponse(apperrors.InvalidRequest("invalid json")), nil
		}
		profile, err := profileService.UpdateMe(ctx, identity, fields)
		if err != nil {
			return lambdautils.ErrorResponse(err), nil
		}
		return lambdautils.JSONResponse(200, profile), nil
	default:
		return lambdautils.JSONResponse(404, apperrors.ErrorResponse{Error: "route_not_found", Message: method + " " + path}), nil
	}
}

func main() {
	lambda.Start(handler)
}
