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

	"showroom/users/model"
)

type UserDynDao struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserDynDao(client *dynamodb.Client, tableName string) *UserDynDao {
	return &UserDynDao{client: client, tableName: tableName}
}

func (dao *UserDynDao) GetUser(ctx context.Context, userID string) (model.UserProfile, bool, error) {
	response, err := dao.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dao.tableName),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return model.UserProfile{}, false, err
	}
	if response.Item == nil {
		return model.UserProfile{}, false, nil
	}

	var profile model.UserProfile
	if err := attributevalue.UnmarshalMap(response.Item, &profile); err != nil {
		return model.UserProfile{}, false, fmt.Errorf("unmarshal user %v: %w", userID, err)
	}
	return profile, true, nil
}

func (dao *UserDynDao) PutUser(ctx context.Context, profile model.UserProfile) error {
	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	_, err = dao.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(dao.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(userId)"),
	})
	if err != nil {
		// A concurrent first-sight upsert already created the row; fine.
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil
		}
	}
	return err
}

func (dao *UserDynDao) UpdateUser(ctx context.Context, userID string, fields map[string]any) (model.UserProfile, error) {
	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))
	var sets []string

	for field, value := range fields {
		attr, err := attributevalue.Marshal(value)
		if err != nil {
			return model.UserProfile{}, fmt.Errorf("marshal field %v: %w", field, err)
		}
		names["#"+field] = field
		values[":"+field] = attr
		sets = append(sets, "#"+field+" = :"+field)
	}

	response, err := dao.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(dao.tableName),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(userId)"),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return model.UserProfile{}, model.ErrUserNotFound
		}
		return model.UserProfile{}, err
	}

	var profile model.UserProfile
	if err := attributevalue.UnmarshalMap(response.Attributes, &profile); err != nil {
		return model.UserProfile{}, fmt.Errorf("unmarshal updated user %v: %w", userID, err)
	}
	return profile, nil
}
