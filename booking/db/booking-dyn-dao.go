package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"showroom/booking/model"
)

// UserBookingsIndex is the secondary index keyed by userId that backs the
// "my bookings" query.
const UserBookingsIndex = "UserBookings"

type BookingDynDao struct {
	client    *dynamodb.Client
	tableName string
}

func NewBookingDynDao(client *dynamodb.Client, tableName string) *BookingDynDao {
	return &BookingDynDao{client: client, tableName: tableName}
}

func (dao *BookingDynDao) CreateBookingWithLock(ctx context.Context, booking model.Booking, lock model.SlotLock) error {
	lockItem, err := attributevalue.MarshalMap(lock)
	if err != nil {
		return fmt.Errorf("marshal slot lock: %w", err)
	}
	bookingItem, err := attributevalue.MarshalMap(booking)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}

	// Item order matters: the cancellation reasons come back in submission
	// order, which is how a slot conflict is told apart from an id collision.
	_, err = dao.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(dao.tableName),
				Item:                lockItem,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(dao.tableName),
				Item:                bookingItem,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			}},
		},
	})

	if err == nil {
		return nil
	}

	var cancelled *types.TransactionCanceledException
	if errors.As(err, &cancelled) && len(cancelled.CancellationReasons) == 2 {
		if reasonIsConditionFailure(cancelled.CancellationReasons[0]) {
			return model.ErrSlotTaken
		}
		if reasonIsConditionFailure(cancelled.CancellationReasons[1]) {
			return model.ErrBookingIDTaken
		}
	}
	return err
}

func reasonIsConditionFailure(reason types.CancellationReason) bool {
	return reason.Code != nil && *reason.Code == "ConditionalCheckFailed"
}

func (dao *BookingDynDao) GetBooking(ctx context.Context, id string) (model.Booking, bool, error) {
	response, err := dao.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(dao.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return model.Booking{}, false, err
	}
	if response.Item == nil {
		return model.Booking{}, false, nil
	}

	var booking model.Booking
	if err := attributevalue.UnmarshalMap(response.Item, &booking); err != nil {
		return model.Booking{}, false, fmt.Errorf("unmarshal booking %v: %w", id, err)
	}
	return booking, true, nil
}

func (dao *BookingDynDao) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus, updatedAt string) (model.Booking, error) {
	response, err := dao.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(dao.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":    &types.AttributeValueMemberS{Value: string(status)},
			":updatedAt": &types.AttributeValueMemberS{Value: updatedAt},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
		UpdateExpression:    aws.String("SET #status = :status, updatedAt = :updatedAt"),
		ReturnValues:        types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return model.Booking{}, model.ErrBookingNotFound
		}
		return model.Booking{}, err
	}

	var booking model.Booking
	if err := attributevalue.UnmarshalMap(response.Attributes, &booking); err != nil {
		return model.Booking{}, fmt.Errorf("unmarshal updated booking %v: %w", id, err)
	}
	return booking, nil
}

func (dao *BookingDynDao) DeleteSlotLock(ctx context.Context, lockID string) error {
	_, err := dao.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(dao.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: lockID},
		},
	})
	return err
}

func (dao *BookingDynDao) QueryBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	response, err := dao.client.Query(ctx, &dynamodb.QueryInput{
		TableName: aws.String(dao.tableName),
		IndexName: aws.String(UserBookingsIndex),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
		KeyConditionExpression: aws.String("userId = :userId"),
		Select:                 types.SelectAllAttributes,
	})
	if err != nil {
		return nil, err
	}

	var bookings []model.Booking
	if err := attributevalue.UnmarshalListOfMaps(response.Items, &bookings); err != nil {
		return nil, fmt.Errorf("unmarshal bookings for user %v: %w", userID, err)
	}
	return bookings, nil
}

func (dao *BookingDynDao) ScanSlotLocks(ctx context.Context) ([]model.SlotLock, error) {
	var locks []model.SlotLock
	var startKey map[string]types.AttributeValue

	for {
		response, err := dao.client.Scan(ctx, &dynamodb.ScanInput{
			TableName: aws.String(dao.tableName),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":lockType": &types.AttributeValueMemberS{Value: model.RecordTypeSlotLock},
			},
			FilterExpression:  aws.String("recordType = :lockType"),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}

		var page []model.SlotLock
		if err := attributevalue.UnmarshalListOfMaps(response.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal slot locks: %w", err)
		}
		locks = append(locks, page...)

		if response.LastEvaluatedKey == nil {
			return locks, nil
		}
		startKey = response.LastEvaluatedKey
	}
}
