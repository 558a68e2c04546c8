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

func studentItem(student *models.Student) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(student)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal student: %w", err)
	}
	item[attrPK] = stringAttr(churchPK(student.ChurchID))
	item[attrSK] = stringAttr(entitySK(entityStudent, student.ID))
	item[attrEntityType] = stringAttr(entityStudent)
	item[attrGSI2PK] = stringAttr(typeKey(entityStudent))
	item[attrGSI2SK] = stringAttr(student.ID)
	return item, nil
}

// CreateStudent writes a student record, failing if the key already exists.
func (s *Store) CreateStudent(ctx context.Context, student *models.Student) (err error) {
	start := time.Now()
	defer func() { s.observe("create", "student", start, err) }()

	item, err := studentItem(student)
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
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// PutStudent writes a student record unconditionally (last write wins).
func (s *Store) PutStudent(ctx context.Context, student *models.Student) (err error) {
	start := time.Now()
	defer func() { s.observe("put", "student", start, err) }()

	item, err := studentItem(student)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put student: %w", err)
	}
	return nil
}

// GetStudent fetches a student within a church. Returns (nil, nil) when
// absent.
func (s *Store) GetStudent(ctx context.Context, churchID, id string) (student *models.Student, err error) {
	start := time.Now()
	defer func() { s.observe("get", "student", start, err) }()

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrPK: stringAttr(churchPK(churchID)),
			attrSK: stringAttr(entitySK(entityStudent, id)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	student = &models.Student{}
	if err := attributevalue.UnmarshalMap(out.Item, student); err != nil {
		return nil, fmt.Errorf("failed to unmarshal student: %w", err)
	}
	return student, nil
}

// ListStudents pages through a church's students, optionally narrowed by
// assigned teacher or backing user.
func (s *Store) ListStudents(ctx context.Context, churchID string, filter storage.StudentFilter, opts storage.ListOptions) (page storage.Page[*models.Student], err error) {
	start := time.Now()
	defer func() { s.observe("list", "student", start, err) }()

	keyCond := expression.Key(attrPK).Equal(expression.Value(churchPK(churchID))).
		And(expression.KeyBeginsWith(expression.Key(attrSK), entityPrefix(entityStudent)))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	var filters []expression.ConditionBuilder
	if filter.AssignedTeacherID != "" {
		filters = append(filters, expression.Name("assignedTeacherId").Equal(expression.Value(filter.AssignedTeacherID)))
	}
	if filter.UserID != "" {
		filters = append(filters, expression.Name("userId").Equal(expression.Value(filter.UserID)))
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
		return page, fmt.Errorf("failed to build student list query: %w", err)
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
		return page, fmt.Errorf("failed to list students: %w", err)
	}
	return unmarshalPage[models.Student](out)
}
