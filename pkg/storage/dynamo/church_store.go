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

func churchItem(church *models.Church) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(church)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal church: %w", err)
	}
	item[attrPK] = stringAttr(churchPK(church.ID))
	item[attrSK] = stringAttr(entitySK(entityChurch, church.ID))
	item[attrEntityType] = stringAttr(entityChurch)
	item[attrGSI2PK] = stringAttr(typeKey(entityChurch))
	item[attrGSI2SK] = stringAttr(church.Slug)
	return item, nil
}

// CreateChurch writes a church, failing if the key already exists. Slug
// uniqueness is checked by the caller via GetChurchBySlug.
func (s *Store) CreateChurch(ctx context.Context, church *models.Church) (err error) {
	start := time.Now()
	defer func() { s.observe("create", "church", start, err) }()

	item, err := churchItem(church)
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
		return fmt.Errorf("failed to create church: %w", err)
	}
	return nil
}

// PutChurch writes a church unconditionally (last write wins).
func (s *Store) PutChurch(ctx context.Context, church *models.Church) (err error) {
	start := time.Now()
	defer func() { s.observe("put", "church", start, err) }()

	item, err := churchItem(church)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put church: %w", err)
	}
	return nil
}

// GetChurch fetches a church by id. Returns (nil, nil) when absent.
func (s *Store) GetChurch(ctx context.Context, id string) (church *models.Church, err error) {
	start := time.Now()
	defer func() { s.observe("get", "church", start, err) }()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrPK: stringAttr(churchPK(id)),
			attrSK: stringAttr(entitySK(entityChurch, id)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get church: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	church = &models.Church{}
	if err := attributevalue.UnmarshalMap(out.Item, church); err != nil {
		return nil, fmt.Errorf("failed to unmarshal church: %w", err)
	}
	return church, nil
}

// GetChurchBySlug fetches a church by slug. Returns (nil, nil) when absent.
func (s *Store) GetChurchBySlug(ctx context.Context, slug string) (church *models.Church, err error) {
	start := time.Now()
	defer func() { s.observe("get_by_slug", "church", start, err) }()

	keyCond := expression.Key(attrGSI2PK).Equal(expression.Value(typeKey(entityChurch))).
		And(expression.Key(attrGSI2SK).Equal(expression.Value(slug)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build slug query: %w", err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		IndexName:                 aws.String(indexGSI2),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query church by slug: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	church = &models.Church{}
	if err := attributevalue.UnmarshalMap(out.Items[0], church); err != nil {
		return nil, fmt.Errorf("failed to unmarshal church: %w", err)
	}
	return church, nil
}

// ListChurches pages through all churches. Platform admin only.
func (s *Store) ListChurches(ctx context.Context, opts storage.ListOptions) (page storage.Page[*models.Church], err error) {
	start := time.Now()
	defer func() { s.observe("list", "church", start, err) }()

	keyCond := expression.Key(attrGSI2PK).Equal(expression.Value(typeKey(entityChurch)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return page, fmt.Errorf("failed to build church list query: %w", err)
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
		return page, fmt.Errorf("failed to list churches: %w", err)
	}
	return unmarshalPage[models.Church](out)
}
