package main

import (
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

func handler() error {
	_, err := dynamoutils.DeleteTable(client, cfg.BookingsTable)
	_, err = dynamoutils.DeleteTable(client, cfg.CarsTable)
	_, err = dynamoutils.DeleteTable(client, cfg.UsersTable)
	return err
}

func main() {
	lambda.Start(handler)
}
