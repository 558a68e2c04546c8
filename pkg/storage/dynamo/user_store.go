package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

func userItem(user *models.User) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}
	item[attrPK] = stringAttr(churchPK(user.ChurchID))
	item[attrSK] = stringAttr(entitySK(entityUser, user.ID))
	item[attrEntityType] = stringAttr(entityUser)
	item[attrGSI1PK] = stringAttr(emailKey(user.Email))
	item[attrGSI2PK] = stringAttr(typeKey(entityUser))
	item[attrGSI2SK] = stringAttr(user.ID)
	return item, nil
}

// CreateUser writes a user, failing if the key already exists.
func (s *Store) CreateUser(ctx context.Context, user *models.User) (err error) {
	start := time.Now()
	defer func() { s.observe("create", "user", start, err) }()

	item, err := userItem(user)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// PutUser writes a user unconditionally (last write wins).
func (s *Store) PutUser(ctx context.Context, user *models.User) (err error) {
	start := time.Now()
	defer func() { s.observe("put", "user", start, err) }()

	item, err := userItem(user)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put user: %w", err)
	}
	return nil
}

// GetUser fetches a user within a church. Returns (nil, nil) when absent.
func (s *Store) GetUser(ctx context.Context, churchID, id string) (user *models.User, err error) {
	start := time.Now()
	defer func() { s.observe("get", "user", start, err) }()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrPK: stringAttr(churchPK(churchID)),
			attrSK: stringAttr(entitySK(entityUser, id)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	user = &models.User{}
	if err := attributevalue.UnmarshalMap(out.Item, user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return user, nil
}

// GetUserByEmail looks up a user by lowercased email across all tenants.
// Returns (nil, nil) when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user *models.User, err error) {
	start := time.Now()
	defer func() { s.observe("get_by_email", "user", start, err) }()

	keyCond := expression.Key(attrGSI1PK).Equal(expression.Value(emailKey(email)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build email query: %w", err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		IndexName:                 aws.String(indexGSI1),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	user = &models.User{}
	if err := attributevalue.UnmarshalMap(out.Items[0], user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return user, nil
}

// ListUsers pages through a church's users.
func (s *Store) ListUsers(ctx context.Context, churchID string, opts storage.ListOptions) (page storage.Page[*models.User], err error) {
	start := time.Now()
	defer func() { s.observe("list", "user", start, err) }()

	keyCond := expression.Key(attrPK).Equal(expression.Value(churchPK(churchID))).
		And(expression.KeyBeginsWith(expression.Key(attrSK), entityPrefix(entityUser)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return page, fmt.Errorf("failed to build user list query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if err := s.applyPaging(input, opts); err != nil {
		return page, err
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return page, fmt.Errorf("failed to list users: %w", err)
	}
	return unmarshalPage[models.User](out)
}

// ListAllUsers pages through users across every tenant.
func (s *Store) ListAllUsers(ctx context.Context, opts storage.ListOptions) (page storage.Page[*models.User], err error) {
	start := time.Now()
	defer func() { s.observe("list_all", "user", start, err) }()

	keyCond := expression.Key(attrGSI2PK).Equal(expression.Value(typeKey(entityUser)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return page, fmt.Errorf("failed to build user list query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		IndexName:                 aws.String(indexGSI2),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if err := s.applyPaging(input, opts); err != nil {
		return page, err
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return page, fmt.Errorf("failed to list users: %w", err)
	}
	return unmarshalPage[models.User](out)
}

// unmarshalPage decodes a query result into a typed page.
func unmarshalPage[T any](out *dynamodb.QueryOutput) (storage.Page[*T], error) {
	page := storage.Page[*T]{Items: make([]*T, 0, len(out.Items))}
	for _, item := range out.Items {
		entity := new(T)
		if err := attributevalue.UnmarshalMap(item, entity); err != nil {
			return page, fmt.Errorf("failed to unmarshal item: %w", err)
		}
		page.Items = append(page.Items, entity)
	}
	page.NextCursor = cursorFromLastKey(out.LastEvaluatedKey)
	return page, nil
}
