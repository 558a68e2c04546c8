package dynamo

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/shepherdhq/shepherd/pkg/storage"
)

const (
	attrPK         = "PK"
	attrSK         = "SK"
	attrGSI1PK     = "GSI1PK"
	attrGSI2PK     = "GSI2PK"
	attrGSI2SK     = "GSI2SK"
	attrEntityType = "entityType"

	indexGSI1 = "GSI1"
	indexGSI2 = "GSI2"

	entityUser    = "USER"
	entityChurch  = "CHURCH"
	entityStudent = "STUDENT"
	entityStudy   = "STUDY"
	entityLesson  = "LESSON"
)

func churchPK(churchID string) string { return "CHURCH#" + churchID }
func studyPK(studyID string) string   { return "STUDY#" + studyID }

func entitySK(entity, id string) string { return entity + "#" + id }
func entityPrefix(entity string) string { return entity + "#" }

func emailKey(email string) string { return "EMAIL#" + strings.ToLower(email) }
func typeKey(entity string) string { return "TYPE#" + entity }

func stringAttr(value string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: value}
}

// startKeyFromCursor converts an opaque cursor back into an
// ExclusiveStartKey. All key attributes in this table are strings.
func startKeyFromCursor(cursor string) (map[string]types.AttributeValue, error) {
	key, err := storage.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, nil
	}
	out := make(map[string]types.AttributeValue, len(key))
	for name, value := range key {
		out[name] = stringAttr(value)
	}
	return out, nil
}

// cursorFromLastKey converts a LastEvaluatedKey into an opaque cursor.
func cursorFromLastKey(key map[string]types.AttributeValue) string {
	if len(key) == 0 {
		return ""
	}
	out := make(map[string]string, len(key))
	for name, value := range key {
		if s, ok := value.(*types.AttributeValueMemberS); ok {
			out[name] = s.Value
		}
	}
	return storage.EncodeCursor(out)
}
