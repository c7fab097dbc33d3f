package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	internal_errors "github.com/xhunter74/collectionmanager/shared/errors"
)

func possibleValueNotFound(id uuid.UUID) error {
	return internal_errors.NotFound(fmt.Sprintf("Possible value '%s' not found", id))
}

func (s *Storage) PossibleValues(ctx context.Context, fieldId domain.FieldId) ([]domain.PossibleValue, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, value, collection_field_id FROM possible_values WHERE collection_field_id = $1 ORDER BY value",
		fieldId)
	if err != nil {
		return nil, fmt.Errorf("failed to query possible values: %w", err)
	}
	defer rows.Close()

	values := []domain.PossibleValue{}
	for rows.Next() {
		var pv domain.PossibleValue
		if err := rows.Scan(&pv.Id, &pv.Value, &pv.CollectionFieldId); err != nil {
			return nil, fmt.Errorf("failed to scan possible value: %w", err)
		}
		values = append(values, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate possible values: %w", err)
	}
	return values, nil
}

// PossibleValueForOwner resolves value -> field -> collection -> owner
func (s *Storage) PossibleValueForOwner(ctx context.Context, id uuid.UUID, ownerId domain.UserId) (domain.PossibleValue, error) {
	var pv domain.PossibleValue
	err := s.db.QueryRowContext(ctx, `
		SELECT pv.id, pv.value, pv.collection_field_id
		FROM possible_values pv
		JOIN collection_fields f ON f.id = pv.collection_field_id
		JOIN collections c ON c.id = f.collection_id
		WHERE pv.id = $1 AND c.owner_id = $2`, id, ownerId).Scan(&pv.Id, &pv.Value, &pv.CollectionFieldId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PossibleValue{}, possibleValueNotFound(id)
		}
		return domain.PossibleValue{}, fmt.Errorf("failed to query possible value: %w", err)
	}
	return pv, nil
}

func (s *Storage) CreatePossibleValue(ctx context.Context, fieldId domain.FieldId, value string) (domain.PossibleValue, error) {
	pv := domain.PossibleValue{Id: uuid.New(), Value: value, CollectionFieldId: fieldId}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO possible_values(id, value, collection_field_id) VALUES($1, $2, $3)",
		pv.Id, pv.Value, pv.CollectionFieldId)
	if err != nil {
		return domain.PossibleValue{}, fmt.Errorf("failed to insert possible value: %w", err)
	}
	return pv, nil
}

func (s *Storage) UpdatePossibleValue(ctx context.Context, id uuid.UUID, value string) (domain.PossibleValue, error) {
	var pv domain.PossibleValue
	err := s.db.QueryRowContext(ctx,
		"UPDATE possible_values SET value = $2 WHERE id = $1 RETURNING id, value, collection_field_id",
		id, value).Scan(&pv.Id, &pv.Value, &pv.CollectionFieldId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PossibleValue{}, possibleValueNotFound(id)
		}
		return domain.PossibleValue{}, fmt.Errorf("failed to update possible value: %w", err)
	}
	return pv, nil
}

func (s *Storage) DeletePossibleValue(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM possible_values WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete possible value: %w", err)
	}
	return checkAffected(res, possibleValueNotFound(id))
}
