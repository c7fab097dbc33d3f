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

const fieldColumns = "f.id, f.collection_id, f.name, f.type, f.is_required, f.is_system, f.field_order, f.created, f.updated"

const (
	fieldOrderConstraint = "collection_fields_order_key"
	fieldNameConstraint  = "collection_fields_name_key"
)

func fieldNotFound(id domain.FieldId) error {
	return internal_errors.NotFound(fmt.Sprintf("Collection field '%s' not found", id))
}

func scanField(row rowScanner) (domain.CollectionField, error) {
	var f domain.CollectionField
	err := row.Scan(&f.Id, &f.CollectionId, &f.Name, &f.Type, &f.IsRequired, &f.IsSystem, &f.Order, &f.Created, &f.Updated)
	return f, err
}

// fieldWriteError maps unique violations on name or order to Conflict
func fieldWriteError(err error, name string, order int) error {
	if constraint, ok := uniqueConstraint(err); ok {
		switch constraint {
		case fieldNameConstraint:
			return internal_errors.Conflict(fmt.Sprintf("Field '%s' already exists in the collection", name))
		case fieldOrderConstraint:
			return internal_errors.Conflict(fmt.Sprintf("Field with order %d already exists in the collection", order))
		}
		return internal_errors.Conflict("Field already exists")
	}
	return fmt.Errorf("failed to write collection field: %w", err)
}

func (s *Storage) CollectionFields(ctx context.Context, collectionId domain.CollectionId) ([]domain.CollectionField, error) {
	return s.collectionFields(ctx, s.db, collectionId)
}

func (s *Storage) collectionFields(ctx context.Context, q Querier, collectionId domain.CollectionId) ([]domain.CollectionField, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+fieldColumns+" FROM collection_fields f WHERE f.collection_id = $1 ORDER BY f.field_order", collectionId)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection fields: %w", err)
	}
	defer rows.Close()

	fields := []domain.CollectionField{}
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collection fields: %w", err)
	}
	return fields, nil
}

// FieldForOwner resolves the field through its collection, a field of a
// foreign collection is NotFound.
func (s *Storage) FieldForOwner(ctx context.Context, id domain.FieldId, ownerId domain.UserId) (domain.CollectionField, error) {
	return s.fieldForOwner(ctx, s.db, id, ownerId)
}

func (s *Storage) fieldForOwner(ctx context.Context, q Querier, id domain.FieldId, ownerId domain.UserId) (domain.CollectionField, error) {
	f, err := scanField(q.QueryRowContext(ctx, `
		SELECT `+fieldColumns+`
		FROM collection_fields f
		JOIN collections c ON c.id = f.collection_id
		WHERE f.id = $1 AND c.owner_id = $2`, id, ownerId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CollectionField{}, fieldNotFound(id)
		}
		return domain.CollectionField{}, fmt.Errorf("failed to query collection field: %w", err)
	}
	return f, nil
}

func (s *Storage) field(ctx context.Context, q Querier, id domain.FieldId) (domain.CollectionField, error) {
	f, err := scanField(q.QueryRowContext(ctx, "SELECT "+fieldColumns+" FROM collection_fields f WHERE f.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CollectionField{}, fieldNotFound(id)
		}
		return domain.CollectionField{}, fmt.Errorf("failed to query collection field: %w", err)
	}
	return f, nil
}

func (s *Storage) insertField(ctx context.Context, q Querier, f domain.CollectionField) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO collection_fields(id, collection_id, name, type, is_required, is_system, field_order)
		VALUES($1, $2, $3, $4, $5, $6, $7)`,
		f.Id, f.CollectionId, f.Name, f.Type, f.IsRequired, f.IsSystem, f.Order)
	if err != nil {
		return fieldWriteError(err, f.Name, f.Order)
	}
	return nil
}

// CreateField appends the field after the last one when no order is given.
func (s *Storage) CreateField(ctx context.Context, data domain.FieldCreationData) (domain.CollectionField, error) {
	id := uuid.New()
	var created domain.CollectionField
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		order := 0
		if data.Order != nil {
			order = *data.Order
		} else {
			err := tx.QueryRowContext(ctx,
				"SELECT COALESCE(MAX(field_order) + 1, 0) FROM collection_fields WHERE collection_id = $1",
				data.CollectionId).Scan(&order)
			if err != nil {
				return fmt.Errorf("failed to query next field order: %w", err)
			}
		}

		err := s.insertField(ctx, tx, domain.CollectionField{
			Id:           id,
			CollectionId: data.CollectionId,
			Name:         data.Name,
			Type:         data.Type,
			IsRequired:   data.IsRequired,
			Order:        order,
		})
		if err != nil {
			return err
		}
		created, err = s.field(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.CollectionField{}, err
	}
	return created, nil
}

// UpdateField rewrites name, type and required flag. A changed order swaps
// positions with the field currently holding it.
func (s *Storage) UpdateField(ctx context.Context, data domain.FieldUpdateData) (domain.CollectionField, error) {
	var updated domain.CollectionField
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.field(ctx, tx, data.Id)
		if err != nil {
			return err
		}
		if current.Order != data.Order {
			if err := s.swapOrder(ctx, tx, current, data.Order); err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE collection_fields SET name = $2, type = $3, is_required = $4, updated = now()
			WHERE id = $1`,
			data.Id, data.Name, data.Type, data.IsRequired)
		if err != nil {
			return fieldWriteError(err, data.Name, data.Order)
		}
		updated, err = s.field(ctx, tx, data.Id)
		return err
	})
	if err != nil {
		return domain.CollectionField{}, err
	}
	return updated, nil
}

// ChangeFieldOrder moves the field to order, the previous occupant takes the
// field's old position.
func (s *Storage) ChangeFieldOrder(ctx context.Context, id domain.FieldId, order int) (domain.CollectionField, error) {
	var updated domain.CollectionField
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.field(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Order != order {
			if err := s.swapOrder(ctx, tx, current, order); err != nil {
				return err
			}
		}
		updated, err = s.field(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.CollectionField{}, err
	}
	return updated, nil
}

// must run inside a transaction
func (s *Storage) swapOrder(ctx context.Context, tx *sql.Tx, field domain.CollectionField, order int) error {
	if _, err := tx.ExecContext(ctx, "SET CONSTRAINTS "+fieldOrderConstraint+" DEFERRED"); err != nil {
		return fmt.Errorf("failed to defer order constraint: %w", err)
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE collection_fields SET field_order = $3, updated = now()
		WHERE collection_id = $1 AND field_order = $2`,
		field.CollectionId, order, field.Order)
	if err != nil {
		return fmt.Errorf("failed to move field occupying order %d: %w", order, err)
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE collection_fields SET field_order = $2, updated = now() WHERE id = $1", field.Id, order)
	if err != nil {
		return fieldWriteError(err, field.Name, order)
	}
	return nil
}

func (s *Storage) DeleteField(ctx context.Context, id domain.FieldId) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM collection_fields WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete collection field: %w", err)
	}
	return checkAffected(res, fieldNotFound(id))
}
