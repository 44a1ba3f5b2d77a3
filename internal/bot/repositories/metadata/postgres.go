// Package metadata stores one row per archived batch, keyed by its retrieval code.
package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/common"
	"github.com/dmitrijs2005/sharebot/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresRepository implements metadata storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a metadata row. A duplicate code yields common.ErrCodeExists
// so the caller can regenerate and retry.
func (r *PostgresRepository) Create(ctx context.Context, m *models.Metadata) error {
	query := `INSERT INTO metadata (code, description, is_mix) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, m.Code, m.Description, m.IsMix); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert metadata %s: %w", m.Code, common.ErrCodeExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByCode returns the metadata row for code or common.ErrNotFound.
func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*models.Metadata, error) {
	query := `SELECT code, description, is_mix, created_at FROM metadata WHERE code=$1`

	m := &models.Metadata{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(&m.Code, &m.Description, &m.IsMix, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select metadata: %w", err)
	}
	return m, nil
}
