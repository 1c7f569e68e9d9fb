package main

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"showroom/config"
	"showroom/dynamoutils"
)

var (
	client *dynamodb.Client
	cfg    config.Config
)

func init() {
	cfg = config.Load()
	client = dynamoutils.CreateClient(cfg)
}

func handler(_ context.Context, _ json.RawMessage) error {
	existingTableNames, err := dynamoutils.GetExistingTableNames(client)

	if err != nil {
		return err
	}

	if !slices.Contains(existingTableNames, cfg.BookingsTable) {
		_, err = dynamoutils.CreateBookingsTable(client, cfg.BookingsTable)
		if err != nil {
			return err
		}
	}

	if !slices.Contains(existingTableNames, cfg.CarsTable) {
		_, err = dynamoutils.CreateCarsTable(client, cfg.CarsTable)
		if err != nil {
			return err
		}
	}

	if !slices.Contains(existingTableNames, cfg.UsersTable) {
		_, err = dynamoutils.CreateUsersTable(client, cfg.UsersTable)
		if err != nil {
			return err
		}
	}

	return nil
}

func main() {
	lambda.Start(handler)
}
