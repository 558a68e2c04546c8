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

func studyItem(study *models.BibleStudy) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(study)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal study: %w", err)
	}
	item[attrPK] = stringAttr(churchPK(study.ChurchID))
	item[attrSK] = stringAttr(entitySK(entityStudy, study.ID))
	item[attrEntityType] = stringAttr(entityStudy)
	item[attrGSI2PK] = stringAttr(typeKey(entityStudy))
	item[attrGSI2SK] = stringAttr(study.ID)
	return item, nil
}

// CreateStudy writes a study, failing if the key already exists.
func (s *Store) CreateStudy(ctx context.Context, study *models.BibleStudy) (err error) {
	start := time.Now()
	defer func() { s.observe("create", "study", start, err) }()

	item, err := studyItem(study)
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
		return fmt.Errorf("failed to create study: %w", err)
	}
	return nil
}

// PutStudy writes a study unconditionally (last write wins).
func (s *Store) PutStudy(ctx context.Context, study *models.BibleStudy) (err error) {
	start := time.Now()
	defer func() { s.observe("put", "study", start, err) }()

	item, err := studyItem(study)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put study: %w", err)
	}
	return nil
}

// GetStudy fetches a study within a church. Returns (nil, nil) when absent.
func (s *Store) GetStudy(ctx context.Context, churchID, id string) (study *models.BibleStudy, err error) {
	start := time.Now()
	defer func() { s.observe("get", "study", start, err) }()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrPK: stringAttr(churchPK(churchID)),
			attrSK: stringAttr(entitySK(entityStudy, id)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get study: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	study = &models.BibleStudy{}
	if err := attributevalue.UnmarshalMap(out.Item, study); err != nil {
		return nil, fmt.Errorf("failed to unmarshal study: %w", err)
	}
	return study, nil
}

// ListStudies pages through a church's studies, optionally narrowed by
// teacher, status, or enrolled student.
func (s *Store) ListStudies(ctx context.Context, churchID string, filter storage.StudyFilter, opts storage.ListOptions) (page storage.Page[*models.BibleStudy], err error) {
	start := time.Now()
	defer func() { s.observe("list", "study", start, err) }()

	keyCond := expression.Key(attrPK).Equal(expression.Value(churchPK(churchID))).
		And(expression.KeyBeginsWith(expression.Key(attrSK), entityPrefix(entityStudy)))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	var filters []expression.ConditionBuilder
	if filter.TeacherID != "" {
		filters = append(filters, expression.Name("teacherId").Equal(expression.Value(filter.TeacherID)))
	}
	if filter.Status != "" {
		filters = append(filters, expression.Name("status").Equal(expression.Value(string(filter.Status))))
	}
	if filter.StudentID != "" {
		filters = append(filters, expression.Name("studentIds").Contains(filter.StudentID))
	}
	if len(filters) > 0 {
		cond := filters[0]
		for _, f := range filters[1:] {
			cond = cond.And(f)
		}
		builder = builder.WithFilter(cond)
	}

	expr, err := builder.Build()
	if err != nil {
		return page, fmt.Errorf("failed to build study list query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if err := s.applyPaging(input, opts); err != nil {
		return page, err
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return page, fmt.Errorf("failed to list studies: %w", err)
	}
	return unmarshalPage[models.BibleStudy](out)
}
