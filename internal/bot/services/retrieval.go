package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/sharebot/internal/bot/codegen"
	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/bot/repositories/repomanager"
	"github.com/dmitrijs2005/sharebot/internal/bot/transport"
	"github.com/dmitrijs2005/sharebot/internal/common"
	"github.com/dmitrijs2005/sharebot/internal/logging"
)

// Summary is shown to the user before they confirm a download.
type Summary struct {
	Code        string
	Description string
	IsMix       bool
	Counts      map[models.FileKind]int
}

// Kinds returns the kinds present, sorted for stable display.
func (s *Summary) Kinds() []models.FileKind {
	kinds := make([]models.FileKind, 0, len(s.Counts))
	for k := range s.Counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Total is the number of files across all kinds.
func (s *Summary) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Delivery reports how a forward run went.
type Delivery struct {
	Total  int
	Sent   int
	Failed int
}

type RetrievalService struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	sender    transport.Sender
	channelID int64
	logger    logging.Logger
}

func NewRetrievalService(db *sql.DB, repos repomanager.RepositoryManager, sender transport.Sender, channelID int64, logger logging.Logger) *RetrievalService {
	return &RetrievalService{
		db:        db,
		repos:     repos,
		sender:    sender,
		channelID: channelID,
		logger:    logger.With("module", "retrieval"),
	}
}

// Lookup finds the batch stored under code (case-insensitive) and summarizes it.
// An unknown code yields common.ErrNotFound.
func (s *RetrievalService) Lookup(ctx context.Context, code string) (*Summary, error) {
	code = codegen.Normalize(code)
	if code == "" {
		return nil, common.ErrNotFound
	}

	meta, err := s.repos.Metadata(s.db).GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	counts, err := s.repos.Files(s.db).CountByKind(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("count files of %s: %w", code, err)
	}

	return &Summary{
		Code:        meta.Code,
		Description: meta.Description,
		IsMix:       meta.IsMix,
		Counts:      counts,
	}, nil
}

// Deliver forwards every archived message of code to chatID in stored order.
// Individual forward failures are logged and skipped.
func (s *RetrievalService) Deliver(ctx context.Context, chatID int64, code string) (*Delivery, error) {
	code = codegen.Normalize(code)

	files, err := s.repos.Files(s.db).ListByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("list files of %s: %w", code, err)
	}

	d := &Delivery{Total: len(files)}
	for _, f := range files {
		if err := s.sender.Forward(ctx, chatID, s.channelID, f.ChannelMessageID); err != nil {
			d.Failed++
			s.logger.Error(ctx, "forward failed", "code", code, "message_id", f.ChannelMessageID, "error", err)
			continue
		}
		d.Sent++
	}

	s.logger.Info(ctx, "batch delivered", "code", code, "chat_id", chatID, "sent", d.Sent, "failed", d.Failed)
	return d, nil
}
