package dynamoutils

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	appconfig "showroom/config"
	bookingdb "showroom/booking/db"
)

type TableDefinition struct {
	TableName string

	PartitionKey         AttributeDefinition
	SortKey              AttributeDefinition
	AdditionalAttributes []AttributeDefinition

	SecondaryIndexes []SecondaryIndexDefinition
}

type SecondaryIndexDefinition struct {
	IndexName string

	PartitionKeyName string
	SortKeyName      string
}

type AttributeDefinition struct {
	Name       string
	ScalarType types.ScalarAttributeType
}

// CreateClient builds the DynamoDB client for the configured environment. A
// non-empty endpoint points at dynamodb-local with throwaway credentials.
func CreateClient(cfg appconfig.Config) *dynamodb.Client {
	if cfg.DynamoEndpoint != "" {
		return CreateLocalClient(cfg.DynamoEndpoint, cfg.Region)
	}
	return CreateAwsClient(cfg.Region)
}

func CreateAwsClient(region string) *dynamodb.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithClientLogMode(aws.LogRetries),
	)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return dynamodb.NewFromConfig(cfg)
}

func CreateLocalClient(endpoint string, region string) *dynamodb.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithClientLogMode(aws.LogRetries),
	)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.Credentials = credentials.NewStaticCredentialsProvider("local", "local", "")
	})
}

func CreateTable(client *dynamodb.Client, tableDefinition TableDefinition) (*types.TableDescription, error) {
	var tableDesc *types.TableDescription
	attributeDefinitions := []types.AttributeDefinition{{
		AttributeName: aws.String(tableDefinition.PartitionKey.Name),
		AttributeType: tableDefinition.PartitionKey.ScalarType,
	}}
	if tableDefinition.SortKey.Name != "" {
		attributeDefinitions = append(attributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(tableDefinition.SortKey.Name),
			AttributeType: tableDefinition.SortKey.ScalarType,
		})
	}

	for _, additionalAttribute := range tableDefinition.AdditionalAttributes {
		attributeDefinitions = append(attributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(additionalAttribute.Name),
			AttributeType: additionalAttribute.ScalarType,
		})
	}

	tableSchema := createKeySchema(
		tableDefinition.PartitionKey.Name,
		tableDefinition.SortKey.Name,
	)

	var globalSecondaryIndexes []types.GlobalSecondaryIndex
	for _, index := range tableDefinition.SecondaryIndexes {
		indexSchema := createKeySchema(
			index.PartitionKeyName,
			index.SortKeyName,
		)

		globalSecondaryIndexes = append(globalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(index.IndexName),
			KeySchema:  indexSchema,
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	createTableInput := dynamodb.CreateTableInput{
		TableName:              aws.String(tableDefinition.TableName),
		AttributeDefinitions:   attributeDefinitions,
		KeySchema:              tableSchema,
		BillingMode:            types.BillingModePayPerRequest,
		GlobalSecondaryIndexes: globalSecondaryIndexes,
	}

	table, err := client.CreateTable(context.TODO(), &createTableInput)

	if err != nil {
		log.Printf("Couldn't create table %v. Here's why: %v\n", tableDefinition.TableName, err)
	} else {
		waiter := dynamodb.NewTableExistsWaiter(client)
		err = waiter.Wait(context.TODO(), &dynamodb.DescribeTableInput{
			TableName: aws.String(tableDefinition.TableName)}, 5*time.Minute)
		if err != nil {
			log.Printf("Wait for table exists failed. Here's why: %v\n", err)
		}
		tableDesc = table.TableDescription
	}
	return tableDesc, err
}

func createKeySchema(partitionKeyName string, sortKeyName string) []types.KeySchemaElement {
	keySchema := []types.KeySchemaElement{{
		AttributeName: aws.String(partitionKeyName),
		KeyType:       types.KeyTypeHash,
	}}
	if sortKeyName != "" {
		keySchema = append(keySchema, types.KeySchemaElement{
			AttributeName: aws.String(sortKeyName),
			KeyType:       types.KeyTypeRange,
		})
	}
	return keySchema
}

func GetExistingTableNames(client *dynamodb.Client) (tableNames []string, err error) {
	result, err := client.ListTables(context.TODO(), &dynamodb.ListTablesInput{})
	if err != nil {
		return []string{}, err
	}
	return result.TableNames, nil
}

func DeleteTable(client *dynamodb.Client, tableName string) (*dynamodb.DeleteTableOutput, error) {
	table, err := client.DeleteTable(context.TODO(), &dynamodb.DeleteTableInput{TableName: &tableName})

	if err != nil {
		log.Printf("Could not delete table %v: %v\n", tableName, err)
	}

	return table, err
}

// CreateBookingsTable provisions the shared bookings/locks table with the
// userId index backing the "my bookings" query.
func CreateBookingsTable(client *dynamodb.Client, tableName string) (*types.TableDescription, error) {
	tableDefinition := TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{"id", types.ScalarAttributeTypeS},
		AdditionalAttributes: []AttributeDefinition{
			{
				Name:       "userId",
				ScalarType: types.ScalarAttributeTypeS,
			},
		},
		SecondaryIndexes: []SecondaryIndexDefinition{
			{
				IndexName:        bookingdb.UserBookingsIndex,
				PartitionKeyName: "userId",
			},
		},
	}

	return CreateTable(client, tableDefinition)
}

func CreateCarsTable(client *dynamodb.Client, tableName string) (*types.TableDescription, error) {
	tableDefinition := TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{"carId", types.ScalarAttributeTypeS},
	}

	return CreateTable(client, tableDefinition)
}

func CreateUsersTable(client *dynamodb.Client, tableName string) (*types.TableDescription, error) {
	tableDefinition := TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{"userId", types.ScalarAttributeTypeS},
	}

	return CreateTable(client, tableDefinition)
}
