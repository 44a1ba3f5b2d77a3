// Package manifest mirrors a JSON description of every archived batch to
// S3-compatible object storage, so the code → channel message mapping can be
// rebuilt if the database is lost.
package manifest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
)

// Entry is one archived file.
type Entry struct {
	Position  int             `json:"position"`
	Kind      models.FileKind `json:"kind"`
	MessageID int             `json:"channel_message_id"`
}

// Manifest describes one archived batch.
type Manifest struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	IsMix       bool      `json:"is_mix"`
	ChannelID   int64     `json:"channel_id"`
	Files       []Entry   `json:"files"`
	CreatedAt   time.Time `json:"created_at"`
}

// New builds a manifest from persisted records.
func New(m *models.Metadata, channelID int64, files []*models.File, now time.Time) *Manifest {
	out := &Manifest{
		Code:        m.Code,
		Description: m.Description,
		IsMix:       m.IsMix,
		ChannelID:   channelID,
		Files:       make([]Entry, 0, len(files)),
		CreatedAt:   now.UTC(),
	}
	for _, f := range files {
		out.Files = append(out.Files, Entry{Position: f.Position, Kind: f.Kind, MessageID: f.ChannelMessageID})
	}
	return out
}

// Writer persists manifests.
type Writer interface {
	Write(ctx context.Context, m *Manifest) error
}

// Nop discards manifests; used when no bucket is configured.
type Nop struct{}

func (Nop) Write(context.Context, *Manifest) error { return nil }
