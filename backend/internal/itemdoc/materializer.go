package itemdoc

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
)

const (
	KeyId           = "Id"
	KeyCollectionId = "CollectionId"
	KeyCreated      = "Created"
	KeyUpdated      = "Updated"
)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Coerce recovers the type of a value that came back from storage as a bare
// string. Numeric forms win over bool, date-time and guid. Non-string values
// are returned unchanged.
func Coerce(v domain.FieldValue) domain.FieldValue {
	if v.Kind != domain.KindString {
		return v
	}
	s := strings.TrimSpace(v.Str)

	if decimalPattern.MatchString(s) {
		// integer literals skip float64, it is exact only up to 2^53
		if !strings.Contains(s, ".") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return domain.IntValue(i)
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
				return domain.IntValue(int64(f))
			}
			return domain.DecimalValue(f)
		}
	}
	switch strings.ToLower(s) {
	case "true":
		return domain.BoolValue(true)
	case "false":
		return domain.BoolValue(false)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.DateTimeValue(t)
		}
	}
	if g, err := uuid.Parse(s); err == nil {
		return domain.GuidValue(g)
	}
	return v
}

// IsHeaderKey reports whether name collides, ignoring case, with a key of the
// item header.
func IsHeaderKey(name string) bool {
	for _, key := range []string{KeyId, KeyCollectionId, KeyCreated, KeyUpdated} {
		if strings.EqualFold(name, key) {
			return true
		}
	}
	return false
}

func header(doc domain.ItemDocument) domain.FlatRecord {
	return domain.FlatRecord{
		{Key: KeyId, Value: domain.GuidValue(doc.Id)},
		{Key: KeyCollectionId, Value: domain.GuidValue(doc.CollectionId)},
		{Key: KeyCreated, Value: domain.DateTimeValue(doc.Created)},
		{Key: KeyUpdated, Value: domain.DateTimeValue(doc.Updated)},
	}
}

func sortedKeys(fields domain.FieldDictionary) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flatten promotes the item header and every stored field to one level,
// keeping the stored keys.
func Flatten(doc domain.ItemDocument) domain.FlatRecord {
	record := header(doc)
	for _, key := range sortedKeys(doc.Fields) {
		record = append(record, domain.FlatEntry{Key: key, Value: Coerce(doc.Fields[key])})
	}
	return record
}

// FlattenNamed is Flatten with field id keys replaced by field names in schema
// order. Keys without a schema field, left by deleted fields, keep the raw key,
// as do fields whose name would shadow a header key.
func FlattenNamed(schema []domain.CollectionField, doc domain.ItemDocument) domain.FlatRecord {
	record := header(doc)
	used := make(map[string]struct{}, len(doc.Fields))
	for _, field := range SortedFields(schema) {
		key := field.Id.String()
		value, ok := doc.Fields[key]
		if !ok {
			continue
		}
		used[key] = struct{}{}
		name := field.Name
		if IsHeaderKey(name) {
			name = key
		}
		record = append(record, domain.FlatEntry{Key: name, Value: Coerce(value)})
	}
	for _, key := range sortedKeys(doc.Fields) {
		if _, ok := used[key]; ok {
			continue
		}
		record = append(record, domain.FlatEntry{Key: key, Value: Coerce(doc.Fields[key])})
	}
	return record
}

// ToItemDto takes DisplayName and Picture from the system fields and lists the
// remaining schema fields present in the document.
func ToItemDto(schema []domain.CollectionField, doc domain.ItemDocument) domain.ItemDto {
	dto := domain.ItemDto{
		Id:           doc.Id,
		CollectionId: doc.CollectionId,
		Values:       []domain.ItemValue{},
		Created:      doc.Created,
		Updated:      doc.Updated,
	}

	for _, field := range SortedFields(schema) {
		value, ok := doc.Fields[field.Id.String()]
		if !ok {
			continue
		}
		if field.IsSystem {
			switch field.Name {
			case domain.DisplayNameField:
				if !value.IsNull() {
					s := value.String()
					dto.DisplayName = &s
				}
			case domain.PictureField:
				dto.Picture = pictureId(value)
			}
			continue
		}
		dto.Values = append(dto.Values, domain.ItemValue{
			FieldId:   field.Id,
			FieldName: field.Name,
			Value:     Coerce(value),
		})
	}
	return dto
}

func pictureId(v domain.FieldValue) *uuid.UUID {
	switch v.Kind {
	case domain.KindGuid:
		if v.Guid != uuid.Nil {
			g := v.Guid
			return &g
		}
	case domain.KindString:
		if g, err := uuid.Parse(strings.TrimSpace(v.Str)); err == nil && g != uuid.Nil {
			return &g
		}
	}
	return nil
}
