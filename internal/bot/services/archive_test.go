package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/common"
	"github.com/dmitrijs2005/sharebot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveChannel int64 = -1001234567890

func newArchiveFixture(t *testing.T, codes ...string) (*ArchiveService, *memStore, *fakeSender, *fakeManifests, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := newMemStore()
	sender := &fakeSender{}
	mf := &fakeManifests{}
	svc := NewArchiveService(db, &fakeRepos{store}, sender, archiveChannel, &seqCodes{codes: codes}, mf, logging.Nop())
	return svc, store, sender, mf, mock
}

func batchOf(refs ...models.FileRef) *models.Batch {
	return &models.Batch{ChatID: 42, Files: refs}
}

func TestArchive_TwoPhotos(t *testing.T) {
	svc, store, sender, mf, mock := newArchiveFixture(t, "ABCDEF12")
	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.Archive(context.Background(), batchOf(
		models.FileRef{Kind: models.KindPhoto, FileID: "p1"},
		models.FileRef{Kind: models.KindPhoto, FileID: "p2"},
	), "  holiday  ")
	require.NoError(t, err)

	assert.Equal(t, "ABCDEF12", res.Code)
	assert.Equal(t, "holiday", res.Description)
	assert.True(t, res.IsMix)
	assert.Equal(t, 2, res.Archived)
	assert.Equal(t, 0, res.Skipped)

	require.Len(t, sender.sent, 2)
	for _, s := range sender.sent {
		assert.Equal(t, "photo", s.kind)
		assert.Equal(t, archiveChannel, s.chatID)
	}

	meta := store.meta["ABCDEF12"]
	require.NotNil(t, meta)
	assert.True(t, meta.IsMix)
	rows := store.files["ABCDEF12"]
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, 1, rows[1].Position)
	assert.Equal(t, 101, rows[0].ChannelMessageID)
	assert.Equal(t, 102, rows[1].ChannelMessageID)

	require.Len(t, mf.written, 1)
	assert.Equal(t, "ABCDEF12", mf.written[0].Code)
	assert.Equal(t, archiveChannel, mf.written[0].ChannelID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchive_SingleFileIsNotMix(t *testing.T) {
	svc, store, _, _, mock := newArchiveFixture(t, "11111111")
	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.Archive(context.Background(), batchOf(
		models.FileRef{Kind: models.KindDocument, FileID: "d1"},
	), "report")
	require.NoError(t, err)
	assert.False(t, res.IsMix)
	assert.False(t, store.meta["11111111"].IsMix)
}

func TestArchive_SendCallPerKind(t *testing.T) {
	svc, _, sender, _, mock := newArchiveFixture(t, "22222222")
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Archive(context.Background(), batchOf(
		models.FileRef{Kind: models.KindPhoto, FileID: "a"},
		models.FileRef{Kind: models.KindVideo, FileID: "b"},
		models.FileRef{Kind: models.KindAudio, FileID: "c"},
		models.FileRef{Kind: models.KindAnimation, FileID: "d"},
		models.FileRef{Kind: models.KindDocument, FileID: "e"},
	), "mixed")
	require.NoError(t, err)

	var kinds []string
	for _, s := range sender.sent {
		kinds = append(kinds, s.kind)
	}
	assert.Equal(t, []string{"photo", "video", "document", "document", "document"}, kinds)
}

func TestArchive_EmptyBatch(t *testing.T) {
	svc, store, sender, _, mock := newArchiveFixture(t, "33333333")

	_, err := svc.Archive(context.Background(), &models.Batch{}, "x")
	require.ErrorIs(t, err, common.ErrEmptyBatch)

	_, err = svc.Archive(context.Background(), nil, "x")
	require.ErrorIs(t, err, common.ErrEmptyBatch)

	assert.Empty(t, sender.sent)
	assert.Empty(t, store.meta)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchive_SkipsRejectedFiles(t *testing.T) {
	svc, store, sender, _, mock := newArchiveFixture(t, "44444444")
	sender.failIDs = map[string]bool{"bad": true}
	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.Archive(context.Background(), batchOf(
		models.FileRef{Kind: models.KindDocument, FileID: "ok1"},
		models.FileRef{Kind: models.KindDocument, FileID: "bad"},
		models.FileRef{Kind: models.KindDocument, FileID: "ok2"},
	), "partial")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Archived)
	assert.Equal(t, 1, res.Skipped)

	rows := store.files["44444444"]
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, 2, rows[1].Position)
}

func TestArchive_AllRejected(t *testing.T) {
	svc, store, sender, mf, mock := newArchiveFixture(t, "55555555")
	sender.failIDs = map[string]bool{"a": true, "b": true}

	_, err := svc.Archive(context.Background(), batchOf(
		models.FileRef{Kind: models.KindPhoto, FileID: "a"},
		models.FileRef{Kind: models.KindPhoto, FileID: "b"},
	), "nothing")
	require.ErrorIs(t, err, common.ErrArchiveFailed)
	assert.Empty(t, store.meta)
	assert.Empty(t, mf.written)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchive_RegeneratesOnCollision(t *testing.T) {
	svc, store, _, _, mock := newArchiveFixture(t, "DUPLICAT", "FRESH001")
	store.meta["DUPLICAT"] = &models.Metadata{Code: "DUPLICAT"}
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.Archive(context.Background(), batchOf(
		models.FileRef{Kind: models.KindDocument, FileID: "d"},
	), "retry")
	require.NoError(t, err)
	assert.Equal(t, "FRESH001", res.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchive_GivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, store, _, _, mock := newArchiveFixture(t, "DUPLICAT")
	store.meta["DUPLICAT"] = &models.Metadata{Code: "DUPLICAT"}
	for i := 0; i < maxCodeAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	_, err := svc.Archive(context.Background(), batchOf(
		models.FileRef{Kind: models.KindDocument, FileID: "d"},
	), "retry")
	require.ErrorIs(t, err, common.ErrCodeExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchive_FileInsertFailureRollsBack(t *testing.T) {
	svc, store, _, mf, mock := newArchiveFixture(t, "66666666")
	store.failFiles = errors.New("disk full")
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Archive(context.Background(), batchOf(
		models.FileRef{Kind: models.KindDocument, FileID: "d"},
	), "boom")
	require.Error(t, err)
	assert.Empty(t, mf.written)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchive_ManifestFailureIsNotFatal(t *testing.T) {
	svc, _, _, mf, mock := newArchiveFixture(t, "77777777")
	mf.err = errors.New("bucket gone")
	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.Archive(context.Background(), batchOf(
		models.FileRef{Kind: models.KindVideo, FileID: "v"},
	), "clip")
	require.NoError(t, err)
	assert.Equal(t, "77777777", res.Code)
}
