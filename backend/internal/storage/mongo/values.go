package mongo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// encodeValue maps a field value to its native BSON form. Decimals are stored
// as Decimal128 and guids as binary subtype 4.
func encodeValue(v domain.FieldValue) (any, error) {
	switch v.Kind {
	case domain.KindNull:
		return nil, nil
	case domain.KindString:
		return v.Str, nil
	case domain.KindInt:
		return v.Int, nil
	case domain.KindDecimal:
		d, err := primitive.ParseDecimal128(strconv.FormatFloat(v.Dec, 'f', -1, 64))
		if err != nil {
			return nil, err
		}
		return d, nil
	case domain.KindBool:
		return v.Bool, nil
	case domain.KindDateTime:
		return primitive.NewDateTimeFromTime(v.Time), nil
	case domain.KindGuid:
		return primitive.Binary{Subtype: bson.TypeBinaryUUID, Data: v.Guid[:]}, nil
	}
	return nil, fmt.Errorf("unsupported value kind %s", v.Kind)
}

func decodeValue(raw any) domain.FieldValue {
	switch v := raw.(type) {
	case nil:
		return domain.NullValue()
	case string:
		return domain.StringValue(v)
	case int32:
		return domain.IntValue(int64(v))
	case int64:
		return domain.IntValue(v)
	case float64:
		return domain.DecimalValue(v)
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return domain.StringValue(v.String())
		}
		return domain.DecimalValue(f)
	case bool:
		return domain.BoolValue(v)
	case primitive.DateTime:
		return domain.DateTimeValue(v.Time())
	case time.Time:
		return domain.DateTimeValue(v)
	case primitive.Binary:
		if (v.Subtype == bson.TypeBinaryUUID || v.Subtype == bson.TypeBinaryUUIDOld) && len(v.Data) == 16 {
			g, err := uuid.FromBytes(v.Data)
			if err == nil {
				return domain.GuidValue(g)
			}
		}
	case primitive.Null, primitive.Undefined:
		return domain.NullValue()
	case primitive.M, primitive.D:
		if data, err := bson.MarshalExtJSON(v, false, false); err == nil {
			return domain.StringValue(string(data))
		}
	case primitive.A:
		if data, err := bson.MarshalExtJSON(bson.D{{Key: "a", Value: v}}, false, false); err == nil {
			// strip the {"a": ... } wrapper
			text := strings.TrimSpace(string(data))
			text = strings.TrimPrefix(text, `{"a":`)
			text = strings.TrimSuffix(text, "}")
			return domain.StringValue(strings.TrimSpace(text))
		}
	}
	return domain.StringValue(fmt.Sprint(raw))
}

func decodeTime(raw any) time.Time {
	switch v := raw.(type) {
	case primitive.DateTime:
		return v.Time().UTC()
	case time.Time:
		return v.UTC()
	}
	return time.Time{}
}
