package metadata

import (
	"context"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.Metadata) error
	GetByCode(ctx context.Context, code string) (*models.Metadata, error)
}
