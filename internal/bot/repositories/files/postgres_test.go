package files

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	insertQ = `(?s)^\s*INSERT\s+INTO\s+files\s*\(code, position, channel_message_id, file_type\).*RETURNING\s+id\s*$`
	listQ   = `SELECT id, code, position, channel_message_id, file_type FROM files\s+WHERE code=\$1 ORDER BY position, id`
)

var countQ = regexp.QuoteMeta(`SELECT file_type, COUNT(*) FROM files WHERE code=$1 GROUP BY file_type`)

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs("AB12CD34", 1, 501, "video").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))

	f := &models.File{Code: "AB12CD34", Position: 1, ChannelMessageID: 501, Kind: models.KindVideo}
	require.NoError(t, repo.Create(context.Background(), f))
	assert.Equal(t, int64(77), f.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("fk violation"))

	err := repo.Create(context.Background(), &models.File{Code: "X", Kind: models.KindPhoto})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*fk violation`, err.Error())
}

func TestListByCode_PreservesOrder(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "code", "position", "channel_message_id", "file_type"}).
		AddRow(int64(1), "C", 0, 100, "photo").
		AddRow(int64(2), "C", 1, 101, "video").
		AddRow(int64(3), "C", 2, 102, "document")
	mock.ExpectQuery(listQ).WithArgs("C").WillReturnRows(rows)

	got, err := repo.ListByCode(context.Background(), "C")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []models.FileKind{models.KindPhoto, models.KindVideo, models.KindDocument},
		[]models.FileKind{got[0].Kind, got[1].Kind, got[2].Kind})
	assert.Equal(t, []int{100, 101, 102},
		[]int{got[0].ChannelMessageID, got[1].ChannelMessageID, got[2].ChannelMessageID})
}

func TestListByCode_QueryErr(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(listQ).WithArgs("C").WillReturnError(errors.New("db err"))

	_, err := repo.ListByCode(context.Background(), "C")
	require.Error(t, err)
	assert.Regexp(t, `failed to select files: .*db err`, err.Error())
}

func TestListByCode_UnknownKind(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "code", "position", "channel_message_id", "file_type"}).
		AddRow(int64(1), "C", 0, 100, "sticker")
	mock.ExpectQuery(listQ).WithArgs("C").WillReturnRows(rows)

	_, err := repo.ListByCode(context.Background(), "C")
	require.ErrorContains(t, err, "unknown file kind")
}

func TestListByCode_RowsErr(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "code", "position", "channel_message_id", "file_type"}).
		AddRow(int64(1), "C", 0, 100, "photo").
		RowError(0, errors.New("row boom"))
	mock.ExpectQuery(listQ).WithArgs("C").WillReturnRows(rows)

	_, err := repo.ListByCode(context.Background(), "C")
	require.Error(t, err)
}

func TestCountByKind_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"file_type", "count"}).
		AddRow("photo", 2).
		AddRow("document", 1)
	mock.ExpectQuery(countQ).WithArgs("C").WillReturnRows(rows)

	got, err := repo.CountByKind(context.Background(), "C")
	require.NoError(t, err)
	assert.Equal(t, map[models.FileKind]int{models.KindPhoto: 2, models.KindDocument: 1}, got)
}

func TestCountByKind_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(countQ).WithArgs("C").WillReturnRows(sqlmock.NewRows([]string{"file_type", "count"}))

	got, err := repo.CountByKind(context.Background(), "C")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCountByKind_QueryErr(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(countQ).WithArgs("C").WillReturnError(errors.New("timeout"))

	_, err := repo.CountByKind(context.Background(), "C")
	require.ErrorContains(t, err, "failed to count files")
}
