package dynamo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
)

// Kinds without a native attribute type are stored as a single entry map
// whose key names the kind.
const (
	tagDecimal  = "$dec"
	tagDateTime = "$date"
	tagGuid     = "$guid"
)

func encodeValue(v domain.FieldValue) types.AttributeValue {
	switch v.Kind {
	case domain.KindString:
		return &types.AttributeValueMemberS{Value: v.Str}
	case domain.KindInt:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(v.Int, 10)}
	case domain.KindDecimal:
		return tagged(tagDecimal, &types.AttributeValueMemberN{Value: strconv.FormatFloat(v.Dec, 'f', -1, 64)})
	case domain.KindBool:
		return &types.AttributeValueMemberBOOL{Value: v.Bool}
	case domain.KindDateTime:
		return tagged(tagDateTime, &types.AttributeValueMemberS{Value: v.Time.UTC().Format(time.RFC3339Nano)})
	case domain.KindGuid:
		return tagged(tagGuid, &types.AttributeValueMemberS{Value: v.Guid.String()})
	}
	return &types.AttributeValueMemberNULL{Value: true}
}

func tagged(tag string, value types.AttributeValue) types.AttributeValue {
	return &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{tag: value}}
}

func decodeValue(av types.AttributeValue) domain.FieldValue {
	switch v := av.(type) {
	case *types.AttributeValueMemberNULL:
		return domain.NullValue()
	case *types.AttributeValueMemberS:
		return domain.StringValue(v.Value)
	case *types.AttributeValueMemberBOOL:
		return domain.BoolValue(v.Value)
	case *types.AttributeValueMemberN:
		return decodeNumber(v.Value)
	case *types.AttributeValueMemberM:
		if value, ok := decodeTagged(v.Value); ok {
			return value
		}
	}
	return domain.StringValue(asJSON(av))
}

func decodeNumber(s string) domain.FieldValue {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return domain.IntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return domain.DecimalValue(f)
	}
	return domain.StringValue(s)
}

func decodeTagged(m map[string]types.AttributeValue) (domain.FieldValue, bool) {
	if len(m) != 1 {
		return domain.FieldValue{}, false
	}
	for tag, inner := range m {
		switch tag {
		case tagDecimal:
			if n, ok := inner.(*types.AttributeValueMemberN); ok {
				if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
					return domain.DecimalValue(f), true
				}
			}
		case tagDateTime:
			if s, ok := inner.(*types.AttributeValueMemberS); ok {
				if t, err := time.Parse(time.RFC3339Nano, s.Value); err == nil {
					return domain.DateTimeValue(t), true
				}
			}
		case tagGuid:
			if s, ok := inner.(*types.AttributeValueMemberS); ok {
				if g, err := uuid.Parse(s.Value); err == nil {
					return domain.GuidValue(g), true
				}
			}
		}
	}
	return domain.FieldValue{}, false
}

// asJSON renders lists, sets and plain maps written by other tools.
func asJSON(av types.AttributeValue) string {
	var native any
	if err := attributevalue.Unmarshal(av, &native); err != nil {
		return fmt.Sprint(av)
	}
	data, err := json.Marshal(native)
	if err != nil {
		return fmt.Sprint(native)
	}
	return string(data)
}
