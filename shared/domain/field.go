package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FieldId = uuid.UUID

type FieldType int

const (
	FieldTypeString FieldType = iota
	FieldTypeNumber
	FieldTypeDateTime
	FieldTypeBoolean
	FieldTypeSelect
	FieldTypeMultiSelect
	FieldTypeFile
	FieldTypeImage
	FieldTypeLink
	FieldTypeText
	FieldTypeColorPicker
	FieldTypeRating
	FieldTypeTags
	FieldTypeCustomObject
	FieldTypeLocation
	FieldTypeCurrency
)

var fieldTypeNames = [...]string{
	"String", "Number", "DateTime", "Boolean", "Select", "MultiSelect", "File", "Image",
	"Link", "Text", "ColorPicker", "Rating", "Tags", "CustomObject", "Location", "Currency",
}

func (t FieldType) Valid() bool {
	return t >= FieldTypeString && int(t) < len(fieldTypeNames)
}

func (t FieldType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
	return fieldTypeNames[t]
}

// ParseFieldType accepts a case-insensitive name or the numeric ordinal.
func ParseFieldType(s string) (FieldType, error) {
	s = strings.TrimSpace(s)
	for i, name := range fieldTypeNames {
		if strings.EqualFold(name, s) {
			return FieldType(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && FieldType(n).Valid() {
		return FieldType(n), nil
	}
	return 0, fmt.Errorf("unknown field type %q", s)
}

func (t FieldType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid field type %d", int(t))
	}
	return json.Marshal(t.String())
}

func (t *FieldType) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseFieldType(s)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("field type must be a name or a number")
	}
	if !FieldType(n).Valid() {
		return fmt.Errorf("unknown field type %d", n)
	}
	*t = FieldType(n)
	return nil
}

// Names of the fields every collection is created with.
const (
	DisplayNameField = "DisplayName"
	PictureField     = "Picture"
)

type CollectionField struct {
	Id           FieldId      `json:"id"`
	Name         string       `json:"name"`
	Type         FieldType    `json:"type"`
	IsRequired   bool         `json:"isRequired"`
	Order        int          `json:"order"`
	IsSystem     bool         `json:"isSystem"`
	CollectionId CollectionId `json:"collectionId"`
	Created      time.Time    `json:"created"`
	Updated      time.Time    `json:"updated"`
}

// SystemFields returns the fields created together with a new collection.
func SystemFields(collectionId CollectionId) []CollectionField {
	return []CollectionField{
		{Name: DisplayNameField, Type: FieldTypeString, Order: 0, IsSystem: true, CollectionId: collectionId},
		{Name: PictureField, Type: FieldTypeImage, Order: 1, IsSystem: true, CollectionId: collectionId},
	}
}

type FieldCreationData struct {
	CollectionId CollectionId
	Name         string
	Type         FieldType
	IsRequired   bool
	// nil appends after the last field
	Order *int
}

type FieldUpdateData struct {
	Id         FieldId
	Name       string
	Type       FieldType
	IsRequired bool
	Order      int
}

type PossibleValue struct {
	Id                uuid.UUID `json:"id"`
	Value             string    `json:"value"`
	CollectionFieldId FieldId   `json:"collectionFieldId"`
}
