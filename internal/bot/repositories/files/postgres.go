// Package files stores the archive-channel message id of every file in a batch.
package files

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/dbx"
)

// PostgresRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a file row and stores the generated id back into file.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (code, position, channel_message_id, file_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, file.Code, file.Position, file.ChannelMessageID, string(file.Kind)).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByCode returns the files of a batch in upload order.
func (r *PostgresRepository) ListByCode(ctx context.Context, code string) ([]*models.File, error) {
	query := `SELECT id, code, position, channel_message_id, file_type FROM files
		WHERE code=$1 ORDER BY position, id
		`
	rows, err := r.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var (
			item models.File
			kind string
		)
		if err := rows.Scan(&item.ID, &item.Code, &item.Position, &item.ChannelMessageID, &kind); err != nil {
			return nil, err
		}
		if item.Kind, err = models.ParseFileKind(kind); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByKind aggregates the number of files per kind for code.
func (r *PostgresRepository) CountByKind(ctx context.Context, code string) (map[models.FileKind]int, error) {
	query := `SELECT file_type, COUNT(*) FROM files WHERE code=$1 GROUP BY file_type`

	rows, err := r.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	defer rows.Close()

	result := make(map[models.FileKind]int)
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		result[models.FileKind(kind)] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
