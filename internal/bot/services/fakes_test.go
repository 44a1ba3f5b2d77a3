package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/sharebot/internal/bot/manifest"
	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/bot/repositories/files"
	"github.com/dmitrijs2005/sharebot/internal/bot/repositories/metadata"
	"github.com/dmitrijs2005/sharebot/internal/common"
	"github.com/dmitrijs2005/sharebot/internal/dbx"
)

// memStore is an in-memory backing for the fake repositories.
type memStore struct {
	mu    sync.Mutex
	meta  map[string]*models.Metadata
	files map[string][]*models.File
	// failFiles makes file inserts fail.
	failFiles error
}

func newMemStore() *memStore {
	return &memStore{meta: map[string]*models.Metadata{}, files: map[string][]*models.File{}}
}

type fakeRepos struct {
	store *memStore
}

func (r *fakeRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (r *fakeRepos) Metadata(dbx.DBTX) metadata.Repository       { return &fakeMetadata{r.store} }
func (r *fakeRepos) Files(dbx.DBTX) files.Repository             { return &fakeFiles{r.store} }

type fakeMetadata struct{ s *memStore }

func (f *fakeMetadata) Create(_ context.Context, m *models.Metadata) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.meta[m.Code]; ok {
		return common.ErrCodeExists
	}
	cp := *m
	f.s.meta[m.Code] = &cp
	return nil
}

func (f *fakeMetadata) GetByCode(_ context.Context, code string) (*models.Metadata, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m, ok := f.s.meta[code]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

type fakeFiles struct{ s *memStore }

func (f *fakeFiles) Create(_ context.Context, file *models.File) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failFiles != nil {
		return f.s.failFiles
	}
	cp := *file
	cp.ID = int64(len(f.s.files[file.Code]) + 1)
	f.s.files[file.Code] = append(f.s.files[file.Code], &cp)
	return nil
}

func (f *fakeFiles) ListByCode(_ context.Context, code string) ([]*models.File, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]*models.File(nil), f.s.files[code]...), nil
}

func (f *fakeFiles) CountByKind(_ context.Context, code string) (map[models.FileKind]int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[models.FileKind]int{}
	for _, file := range f.s.files[code] {
		out[file.Kind]++
	}
	return out, nil
}

type sentFile struct {
	kind   string
	chatID int64
	fileID string
}

type forwarded struct {
	to, from  int64
	messageID int
}

// fakeSender records outbound calls. Files whose id is in failIDs are rejected,
// as are forwards of message ids in failForward.
type fakeSender struct {
	mu          sync.Mutex
	nextID      int
	sent        []sentFile
	forwards    []forwarded
	texts       []string
	failIDs     map[string]bool
	failForward map[int]bool
}

func (s *fakeSender) record(kind string, chatID int64, fileID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIDs[fileID] {
		return 0, errors.New("rejected")
	}
	s.nextID++
	s.sent = append(s.sent, sentFile{kind: kind, chatID: chatID, fileID: fileID})
	return 100 + s.nextID, nil
}

func (s *fakeSender) SendText(_ context.Context, _ int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *fakeSender) SendPhoto(_ context.Context, chatID int64, fileID string) (int, error) {
	return s.record("photo", chatID, fileID)
}

func (s *fakeSender) SendVideo(_ context.Context, chatID int64, fileID string) (int, error) {
	return s.record("video", chatID, fileID)
}

func (s *fakeSender) SendDocument(_ context.Context, chatID int64, fileID string) (int, error) {
	return s.record("document", chatID, fileID)
}

func (s *fakeSender) Forward(_ context.Context, to, from int64, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failForward[messageID] {
		return errors.New("forward rejected")
	}
	s.forwards = append(s.forwards, forwarded{to: to, from: from, messageID: messageID})
	return nil
}

// seqCodes hands out codes in order and repeats the last one.
type seqCodes struct {
	codes []string
	i     int
}

func (g *seqCodes) Generate() string {
	c := g.codes[g.i]
	if g.i < len(g.codes)-1 {
		g.i++
	}
	return c
}

type fakeManifests struct {
	written []*manifest.Manifest
	err     error
}

func (f *fakeManifests) Write(_ context.Context, m *manifest.Manifest) error {
	f.written = append(f.written, m)
	return f.err
}
