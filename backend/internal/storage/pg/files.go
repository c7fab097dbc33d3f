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

func (s *Storage) SaveFile(ctx context.Context, f domain.File) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO files(id, name, collection_id, is_image) VALUES($1, $2, $3, $4)", f.Id, f.Name, f.CollectionId, f.IsImage)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

// FileForOwner returns the file row if its collection belongs to ownerId.
// A non-nil collectionId further restricts the lookup to that collection.
func (s *Storage) FileForOwner(ctx context.Context, id uuid.UUID, ownerId domain.UserId, collectionId *domain.CollectionId) (domain.File, error) {
	query := `
		SELECT fl.id, fl.name, fl.collection_id, fl.is_image, fl.created
		FROM files fl
		JOIN collections c ON c.id = fl.collection_id
		WHERE fl.id = $1 AND c.owner_id = $2`
	args := []any{id, ownerId}
	if collectionId != nil {
		query += " AND fl.collection_id = $3"
		args = append(args, *collectionId)
	}

	var f domain.File
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&f.Id, &f.Name, &f.CollectionId, &f.IsImage, &f.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.File{}, internal_errors.NotFound("File not found")
		}
		return domain.File{}, fmt.Errorf("failed to query file: %w", err)
	}
	return f, nil
}

func (s *Storage) CollectionFiles(ctx context.Context, collectionId domain.CollectionId) ([]domain.File, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, collection_id, is_image, created FROM files WHERE collection_id = $1", collectionId)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection files: %w", err)
	}
	defer rows.Close()

	files := []domain.File{}
	for rows.Next() {
		var f domain.File
		if err := rows.Scan(&f.Id, &f.Name, &f.CollectionId, &f.IsImage, &f.Created); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}

// DeleteFileRecord removes the row and unsets it as picture of its collection.
func (s *Storage) DeleteFileRecord(ctx context.Context, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM files WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		if err := checkAffected(res, internal_errors.NotFound("File not found")); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE collections SET image = NULL, updated = now() WHERE image = $1", id); err != nil {
			return fmt.Errorf("failed to unset collection image: %w", err)
		}
		return nil
	})
}
