package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/database"
)

var _ database.UserDirectory = (*UserRepo)(nil)

// API is the subset of the DynamoDB client the directory needs.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type userItem struct {
	UserID    string    `dynamodbav:"user_id"`
	Name      string    `dynamodbav:"name"`
	Mobile    string    `dynamodbav:"mobile"`
	Latitude  *float64  `dynamodbav:"latitude,omitempty"`
	Longitude *float64  `dynamodbav:"longitude,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

// UserRepo stores one item per user keyed by user_id.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Register(ctx context.Context, user domain.User, position *domain.Coordinate) error {
	item := userItem{
		UserID:    user.ID,
		Name:      user.Name,
		Mobile:    user.Mobile,
		CreatedAt: time.Now().UTC(),
	}
	if position != nil {
		item.Latitude = aws.Float64(position.Lat)
		item.Longitude = aws.Float64(position.Lon)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if isConditionFailed(err) {
		return domain.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (r *UserRepo) Remove(ctx context.Context, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 key(userID),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
	})
	if isConditionFailed(err) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdatePosition(ctx context.Context, userID string, position domain.Coordinate) error {
	lat, err := attributevalue.Marshal(position.Lat)
	if err != nil {
		return err
	}
	lon, err := attributevalue.Marshal(position.Lon)
	if err != nil {
		return err
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 key(userID),
		UpdateExpression:    aws.String("SET latitude = :lat, longitude = :lon"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
			":lat": lat,
			":lon": lon,
		},
	})
	if isConditionFailed(err) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*domain.TrackedUser, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       key(userID),
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if out.Item == nil {
		return nil, domain.ErrUserNotFound
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return item.toTracked(), nil
}

func (r *UserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	var (
		items            []userItem
		lastEvaluatedKey map[string]dynamodbtypes.AttributeValue
	)
	for {
		input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan users: %w", err)
		}

		var page []userItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal users: %w", err)
		}
		items = append(items, page...)

		lastEvaluatedKey = out.LastEvaluatedKey
		if len(lastEvaluatedKey) == 0 {
			break
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].UserID < items[j].UserID
	})

	users := make([]domain.User, len(items))
	for i, it := range items {
		users[i] = domain.User{ID: it.UserID, Name: it.Name, Mobile: it.Mobile}
	}
	return users, nil
}

func (it userItem) toTracked() *domain.TrackedUser {
	tu := &domain.TrackedUser{
		User:      domain.User{ID: it.UserID, Name: it.Name, Mobile: it.Mobile},
		CreatedAt: it.CreatedAt,
	}
	if it.Latitude != nil && it.Longitude != nil {
		tu.LastPosition = &domain.Coordinate{Lat: *it.Latitude, Lon: *it.Longitude}
	}
	return tu
}

func key(userID string) map[string]dynamodbtypes.AttributeValue {
	return map[string]dynamodbtypes.AttributeValue{
		"user_id": &dynamodbtypes.AttributeValueMemberS{Value: userID},
	}
}

func isConditionFailed(err error) bool {
	var ccf *dynamodbtypes.ConditionalCheckFailedException
	return err != nil && errors.As(err, &ccf)
}
