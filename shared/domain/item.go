package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type ItemId = uuid.UUID

type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindDecimal
	KindBool
	KindDateTime
	KindGuid
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	case KindGuid:
		return "guid"
	}
	return "unknown"
}

// FieldValue is a single loosely typed item value. Only the member matching
// Kind is meaningful.
type FieldValue struct {
	Kind ValueKind
	Str  string
	Int  int64
	Dec  float64
	Bool bool
	Time time.Time
	Guid uuid.UUID
}

func NullValue() FieldValue                { return FieldValue{Kind: KindNull} }
func StringValue(s string) FieldValue      { return FieldValue{Kind: KindString, Str: s} }
func IntValue(i int64) FieldValue          { return FieldValue{Kind: KindInt, Int: i} }
func DecimalValue(f float64) FieldValue    { return FieldValue{Kind: KindDecimal, Dec: f} }
func BoolValue(b bool) FieldValue          { return FieldValue{Kind: KindBool, Bool: b} }
func DateTimeValue(t time.Time) FieldValue { return FieldValue{Kind: KindDateTime, Time: t.UTC()} }
func GuidValue(g uuid.UUID) FieldValue     { return FieldValue{Kind: KindGuid, Guid: g} }

func (v FieldValue) IsNull() bool { return v.Kind == KindNull }

// Interface returns the native go value: nil, string, int64, float64, bool,
// time.Time or uuid.UUID.
func (v FieldValue) Interface() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindDecimal:
		return v.Dec
	case KindBool:
		return v.Bool
	case KindDateTime:
		return v.Time
	case KindGuid:
		return v.Guid
	}
	return nil
}

func (v FieldValue) String() string {
	if v.Kind == KindNull {
		return "null"
	}
	return fmt.Sprint(v.Interface())
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON keeps the value as sent: strings stay strings, integral
// numbers become Int, other numbers Decimal. Objects and arrays are kept as
// their compact JSON text.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}
	switch data[0] {
	case 'n':
		*v = NullValue()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = StringValue(buf.String())
	default:
		parsed, err := parseNumber(string(data))
		if err != nil {
			return err
		}
		*v = parsed
	}
	return nil
}

func parseNumber(s string) (FieldValue, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return FieldValue{}, fmt.Errorf("invalid number %q", s)
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return IntValue(int64(f)), nil
	}
	return DecimalValue(f), nil
}

// FieldDictionary maps field id strings to values.
type FieldDictionary map[string]FieldValue

type ItemDocument struct {
	Id           ItemId
	CollectionId CollectionId
	Created      time.Time
	Updated      time.Time
	Fields       FieldDictionary
}

// Projection restricts the field keys returned by an item listing. Nil means
// all fields.
type Projection []string

type FlatEntry struct {
	Key   string
	Value FieldValue
}

// FlatRecord is an item promoted to a single level, serialized as a JSON
// object in entry order.
type FlatRecord []FlatEntry

func (r FlatRecord) Get(key string) (FieldValue, bool) {
	for _, e := range r {
		if e.Key == key {
			return e.Value, true
		}
	}
	return FieldValue{}, false
}

func (r FlatRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type ItemValue struct {
	FieldId   FieldId    `json:"fieldId"`
	FieldName string     `json:"fieldName"`
	Value     FieldValue `json:"value"`
}

type ItemDto struct {
	Id           ItemId       `json:"id"`
	CollectionId CollectionId `json:"collectionId"`
	DisplayName  *string      `json:"displayName"`
	Picture      *uuid.UUID   `json:"picture"`
	Values       []ItemValue  `json:"values"`
	Created      time.Time    `json:"created"`
	Updated      time.Time    `json:"updated"`
}
