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

const collectionColumns = "c.id, c.name, c.description, c.owner_id, c.image, c.created, c.updated"

func collectionNotFound(id domain.CollectionId) error {
	return internal_errors.NotFound(fmt.Sprintf("Collection '%s' not found", id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (domain.Collection, error) {
	var (
		c     domain.Collection
		image uuid.NullUUID
	)
	if err := row.Scan(&c.Id, &c.Name, &c.Description, &c.OwnerId, &image, &c.Created, &c.Updated); err != nil {
		return domain.Collection{}, err
	}
	if image.Valid {
		c.Image = &image.UUID
	}
	return c, nil
}

func (s *Storage) Collections(ctx context.Context, ownerId domain.UserId) ([]domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+collectionColumns+" FROM collections c WHERE c.owner_id = $1 ORDER BY c.created, c.name", ownerId)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	collections := []domain.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}
	return collections, nil
}

// CollectionForOwner returns NotFound both for a missing collection and for one
// owned by somebody else.
func (s *Storage) CollectionForOwner(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) (domain.Collection, error) {
	return s.collectionForOwner(ctx, s.db, id, ownerId)
}

func (s *Storage) collectionForOwner(ctx context.Context, q Querier, id domain.CollectionId, ownerId domain.UserId) (domain.Collection, error) {
	c, err := scanCollection(q.QueryRowContext(ctx,
		"SELECT "+collectionColumns+" FROM collections c WHERE c.id = $1 AND c.owner_id = $2", id, ownerId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Collection{}, collectionNotFound(id)
		}
		return domain.Collection{}, fmt.Errorf("failed to query collection: %w", err)
	}
	return c, nil
}

// CreateCollection inserts the collection together with its system fields.
func (s *Storage) CreateCollection(ctx context.Context, data domain.CollectionCreationData) (domain.Collection, error) {
	id := uuid.New()
	var created domain.Collection
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO collections(id, name, description, owner_id) VALUES($1, $2, $3, $4)",
			id, data.Name, data.Description, data.OwnerId)
		if err != nil {
			return fmt.Errorf("failed to insert collection: %w", err)
		}
		for _, field := range domain.SystemFields(id) {
			field.Id = uuid.New()
			if err := s.insertField(ctx, tx, field); err != nil {
				return err
			}
		}
		created, err = s.collectionForOwner(ctx, tx, id, data.OwnerId)
		return err
	})
	if err != nil {
		return domain.Collection{}, err
	}
	return created, nil
}

func (s *Storage) UpdateCollection(ctx context.Context, ownerId domain.UserId, data domain.CollectionUpdateData) (domain.Collection, error) {
	c, err := scanCollection(s.db.QueryRowContext(ctx, `
		UPDATE collections c SET name = $3, description = $4, image = $5, updated = now()
		WHERE c.id = $1 AND c.owner_id = $2
		RETURNING `+collectionColumns,
		data.Id, ownerId, data.Name, data.Description, uuidOrNil(data.Image)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Collection{}, collectionNotFound(data.Id)
		}
		return domain.Collection{}, fmt.Errorf("failed to update collection: %w", err)
	}
	return c, nil
}

// DeleteCollection removes the collection row, fields, possible values and
// file rows go with it by cascade.
func (s *Storage) DeleteCollection(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE id = $1 AND owner_id = $2", id, ownerId)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return checkAffected(res, collectionNotFound(id))
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
