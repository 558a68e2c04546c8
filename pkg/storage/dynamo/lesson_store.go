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

func lessonItem(lesson *models.LessonProgress) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(lesson)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lesson: %w", err)
	}
	item[attrPK] = stringAttr(studyPK(lesson.StudyID))
	item[attrSK] = stringAttr(entitySK(entityLesson, lesson.ID))
	item[attrEntityType] = stringAttr(entityLesson)
	item[attrGSI2PK] = stringAttr(typeKey(entityLesson))
	item[attrGSI2SK] = stringAttr(lesson.ID)
	return item, nil
}

// CreateLesson writes a lesson row, failing if the key already exists.
func (s *Store) CreateLesson(ctx context.Context, lesson *models.LessonProgress) (err error) {
	start := time.Now()
	defer func() { s.observe("create", "lesson", start, err) }()

	item, err := lessonItem(lesson)
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
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// PutLesson writes a lesson row unconditionally (last write wins).
func (s *Store) PutLesson(ctx context.Context, lesson *models.LessonProgress) (err error) {
	start := time.Now()
	defer func() { s.observe("put", "lesson", start, err) }()

	item, err := lessonItem(lesson)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put lesson: %w", err)
	}
	return nil
}

// GetLesson fetches a lesson within a study. Returns (nil, nil) when absent.
func (s *Store) GetLesson(ctx context.Context, studyID, id string) (lesson *models.LessonProgress, err error) {
	start := time.Now()
	defer func() { s.observe("get", "lesson", start, err) }()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrPK: stringAttr(studyPK(studyID)),
			attrSK: stringAttr(entitySK(entityLesson, id)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	lesson = &models.LessonProgress{}
	if err := attributevalue.UnmarshalMap(out.Item, lesson); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lesson: %w", err)
	}
	return lesson, nil
}

// GetLessonByID resolves a lesson without knowing its study. Returns
// (nil, nil) when absent.
func (s *Store) GetLessonByID(ctx context.Context, id string) (lesson *models.LessonProgress, err error) {
	start := time.Now()
	defer func() { s.observe("get_by_id", "lesson", start, err) }()

	keyCond := expression.Key(attrGSI2PK).Equal(expression.Value(typeKey(entityLesson))).
		And(expression.Key(attrGSI2SK).Equal(expression.Value(id)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lesson query: %w", err)
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
		return nil, fmt.Errorf("failed to query lesson by id: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	lesson = &models.LessonProgress{}
	if err := attributevalue.UnmarshalMap(out.Items[0], lesson); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lesson: %w", err)
	}
	return lesson, nil
}

// ListLessons pages through a study's lessons. Callers sort by lesson
// number; key order within a study is by lesson id.
func (s *Store) ListLessons(ctx context.Context, studyID string, opts storage.ListOptions) (page storage.Page[*models.LessonProgress], err error) {
	start := time.Now()
	defer func() { s.observe("list", "lesson", start, err) }()

	keyCond := expression.Key(attrPK).Equal(expression.Value(studyPK(studyID))).
		And(expression.KeyBeginsWith(expression.Key(attrSK), entityPrefix(entityLesson)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return page, fmt.Errorf("failed to build lesson list query: %w", err)
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
		return page, fmt.Errorf("failed to list lessons: %w", err)
	}
	return unmarshalPage[models.LessonProgress](out)
}
