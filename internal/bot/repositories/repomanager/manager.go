package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sharebot/internal/bot/repositories/files"
	"github.com/dmitrijs2005/sharebot/internal/bot/repositories/metadata"
	"github.com/dmitrijs2005/sharebot/internal/dbx"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Metadata(db dbx.DBTX) metadata.Repository
	Files(db dbx.DBTX) files.Repository
}
