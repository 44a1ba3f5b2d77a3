// Package services holds the bot's use cases: archiving a closed batch under
// a new code, and looking up and delivering an archived batch.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sharebot/internal/bot/codegen"
	"github.com/dmitrijs2005/sharebot/internal/bot/manifest"
	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/sharebot/internal/bot/transport"
	"github.com/dmitrijs2005/sharebot/internal/common"
	"github.com/dmitrijs2005/sharebot/internal/dbx"
	"github.com/dmitrijs2005/sharebot/internal/logging"
)

// maxCodeAttempts bounds regeneration after primary-key collisions.
const maxCodeAttempts = 5

// ArchiveResult is what the user is told after archival.
type ArchiveResult struct {
	Code        string
	Description string
	IsMix       bool
	Archived    int
	Skipped     int
}

type ArchiveService struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	sender    transport.Sender
	channelID int64
	codes     codegen.Generator
	manifests manifest.Writer
	logger    logging.Logger
	now       func() time.Time
}

func NewArchiveService(db *sql.DB, repos repomanager.RepositoryManager, sender transport.Sender, channelID int64,
	codes codegen.Generator, manifests manifest.Writer, logger logging.Logger) *ArchiveService {
	if manifests == nil {
		manifests = manifest.Nop{}
	}
	return &ArchiveService{
		db:        db,
		repos:     repos,
		sender:    sender,
		channelID: channelID,
		codes:     codes,
		manifests: manifests,
		logger:    logger.With("module", "archive"),
		now:       time.Now,
	}
}

// Archive re-sends every file of b to the archive channel, then stores the
// metadata row and one file row per archived file in a single transaction.
//
// Files the channel rejects are logged and skipped; if none could be
// archived nothing is written and common.ErrArchiveFailed is returned.
func (s *ArchiveService) Archive(ctx context.Context, b *models.Batch, description string) (*ArchiveResult, error) {
	if b.Len() == 0 {
		return nil, common.ErrEmptyBatch
	}

	files := s.upload(ctx, b)
	if len(files) == 0 {
		return nil, common.ErrArchiveFailed
	}

	meta := &models.Metadata{
		Description: strings.TrimSpace(description),
		IsMix:       len(files) > 1,
	}

	var err error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		meta.Code = s.codes.Generate()
		err = s.persist(ctx, meta, files)
		if !errors.Is(err, common.ErrCodeExists) {
			break
		}
		s.logger.Warn(ctx, "code collision, regenerating", "code", meta.Code, "attempt", attempt)
	}
	if err != nil {
		return nil, fmt.Errorf("persist batch: %w", err)
	}

	if err := s.manifests.Write(ctx, manifest.New(meta, s.channelID, files, s.now())); err != nil {
		s.logger.Warn(ctx, "manifest mirror failed", "code", meta.Code, "error", err)
	}

	s.logger.Info(ctx, "batch archived", "code", meta.Code, "files", len(files), "skipped", b.Len()-len(files))

	return &ArchiveResult{
		Code:        meta.Code,
		Description: meta.Description,
		IsMix:       meta.IsMix,
		Archived:    len(files),
		Skipped:     b.Len() - len(files),
	}, nil
}

// upload sends each file to the archive channel in batch order. The
// returned records keep the original batch position.
func (s *ArchiveService) upload(ctx context.Context, b *models.Batch) []*models.File {
	files := make([]*models.File, 0, b.Len())
	for i, ref := range b.Files {
		messageID, err := s.sendToArchive(ctx, ref)
		if err != nil {
			s.logger.Error(ctx, "archive upload failed", "position", i, "kind", ref.Kind, "error", err)
			continue
		}
		files = append(files, &models.File{
			Position:         i,
			ChannelMessageID: messageID,
			Kind:             ref.Kind,
		})
	}
	return files
}

// sendToArchive uses the dedicated call for photos and videos and the
// generic document call for every other kind.
func (s *ArchiveService) sendToArchive(ctx context.Context, ref models.FileRef) (int, error) {
	switch ref.Kind {
	case models.KindPhoto:
		return s.sender.SendPhoto(ctx, s.channelID, ref.FileID)
	case models.KindVideo:
		return s.sender.SendVideo(ctx, s.channelID, ref.FileID)
	default:
		return s.sender.SendDocument(ctx, s.channelID, ref.FileID)
	}
}

func (s *ArchiveService) persist(ctx context.Context, meta *models.Metadata, files []*models.File) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Metadata(tx).Create(ctx, meta); err != nil {
			return err
		}
		fileRepo := s.repos.Files(tx)
		for _, f := range files {
			f.Code = meta.Code
			if err := fileRepo.Create(ctx, f); err != nil {
				return fmt.Errorf("file %d: %w", f.Position, err)
			}
		}
		return nil
	})
}
