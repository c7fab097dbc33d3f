// Package itemdoc converts between collection schemas, item input and the
// schemaless item documents kept in the item store.
package itemdoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xhunter74/collectionmanager/shared/api"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
)

type UnknownFieldPolicy string

const (
	IgnoreUnknown UnknownFieldPolicy = "ignore"
	RejectUnknown UnknownFieldPolicy = "reject"
)

type MapperOptions struct {
	UnknownFields UnknownFieldPolicy
}

// SortedFields returns a copy of schema ordered by Order.
func SortedFields(schema []domain.CollectionField) []domain.CollectionField {
	sorted := make([]domain.CollectionField, len(schema))
	copy(sorted, schema)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// BuildItemDocument matches input to schema fields by case-insensitive name and
// returns the field dictionary keyed by field id. Every schema field gets a
// key, absent optional fields are stored as null. Values are kept as sent.
func BuildItemDocument(schema []domain.CollectionField, input []api.ItemFieldInput, opts MapperOptions) (domain.FieldDictionary, error) {
	byName := make(map[string]domain.FieldValue, len(input))
	for _, in := range input {
		name := strings.ToLower(strings.TrimSpace(in.Name))
		// first occurrence wins
		if _, seen := byName[name]; !seen {
			byName[name] = in.Value
		}
	}

	fields := make(domain.FieldDictionary, len(schema))
	matched := make(map[string]struct{}, len(schema))
	for _, field := range SortedFields(schema) {
		name := strings.ToLower(field.Name)
		value, ok := byName[name]
		if ok {
			matched[name] = struct{}{}
		}
		if (!ok || value.IsNull()) && field.IsRequired {
			return nil, errors.BadRequest(fmt.Sprintf("Required field '%s' is missing", field.Name))
		}
		if !ok {
			value = domain.NullValue()
		}
		fields[field.Id.String()] = value
	}

	if opts.UnknownFields == RejectUnknown {
		for name := range byName {
			if _, ok := matched[name]; !ok {
				return nil, errors.BadRequest("Field not found in collection")
			}
		}
	}

	return fields, nil
}

// ProjectionFor resolves comma separated field names to field id keys.
// Unknown names are skipped, empty input means no projection.
func ProjectionFor(schema []domain.CollectionField, names []string) domain.Projection {
	if len(names) == 0 {
		return nil
	}
	projection := domain.Projection{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, field := range schema {
			if strings.EqualFold(field.Name, name) {
				projection = append(projection, field.Id.String())
				break
			}
		}
	}
	return projection
}
