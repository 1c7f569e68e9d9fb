package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"showroom/cars/model"
)

type CarDynDao struct {
	client    *dynamodb.Client
	tableName string
}

func NewCarDynDao(client *dynamodb.Client, tableName string) *CarDynDao {
	return &CarDynDao{client: client, tableName: tableName}
}

func (dao *CarDynDao) ListCars(ctx context.Context, limit int32) ([]model.Car, error) {
	response, err := dao.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(dao.tableName),
		Limit:     aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}

	var cars []model.Car
	if err := attributevalue.UnmarshalListOfMaps(response.Items, &cars); err != nil {
		return nil, fmt.Errorf("unmarshal cars: %w", err)
	}
	return cars, nil
}

func (dao *CarDynDao) GetCar(ctx context.Context, carID string) (model.Car, bool, error) {
	response, err := dao.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dao.tableName),
		Key: map[string]types.AttributeValue{
			"carId": &types.AttributeValueMemberS{Value: carID},
		},
	})
	if err != nil {
		return model.Car{}, false, err
	}
	if response.Item == nil {
		return model.Car{}, false, nil
	}

	var car model.Car
	if err := attributevalue.UnmarshalMap(response.Item, &car); err != nil {
		return model.Car{}, false, fmt.Errorf("unmarshal car %v: %w", carID, err)
	}
	return car, true, nil
}

// CarExists backs the booking service's advisory existence check.
func (dao *CarDynDao) CarExists(ctx context.Context, carID string) (bool, error) {
	_, found, err := dao.GetCar(ctx, carID)
	return found, err
}

func (dao *CarDynDao) CreateCar(ctx context.Context, car model.Car) error {
	item, err := attributevalue.MarshalMap(car)
	if err != nil {
		return fmt.Errorf("marshal car: %w", err)
	}

	_, err = dao.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dao.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(carId)"),
	})
	return err
}

func (dao *CarDynDao) UpdateCar(ctx context.Context, carID string, fields map[string]any) (model.Car, error) {
	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))
	var sets []string

	for field, value := range fields {
		attr, err := attributevalue.Marshal(value)
		if err != nil {
			return model.Car{}, fmt.Errorf("marshal field %v: %w", field, err)
		}
		names["#"+field] = field
		values[":"+field] = attr
		sets = append(sets, "#"+field+" = :"+field)
	}

	response, err := dao.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(dao.tableName),
		Key: map[string]types.AttributeValue{
			"carId": &types.AttributeValueMemberS{Value: carID},
		},
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(carId)"),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return model.Car{}, model.ErrCarNotFound
		}
		return model.Car{}, err
	}

	var car model.Car
	if err := attributevalue.UnmarshalMap(response.Attributes, &car); err != nil {
		return model.Car{}, fmt.Errorf("unmarshal updated car %v: %w", carID, err)
	}
	return car, nil
}

func (dao *CarDynDao) DeleteCar(ctx context.Context, carID string) error {
	_, err := dao.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(dao.tableName),
		Key: map[string]types.AttributeValue{
			"carId": &types.AttributeValueMemberS{Value: carID},
		},
	})
	return err
}
