package files

import (
	"context"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) error
	ListByCode(ctx context.Context, code string) ([]*models.File, error)
	CountByKind(ctx context.Context, code string) (map[models.FileKind]int, error)
}
