// internal/sources/catalog/postgres_test.go
package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sustainatrend-search/internal/common/errors"
)

var catalogColumns = []string{"title", "snippet", "url", "category", "published_at", "confidence"}

func TestPostgresCatalog_Fetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	published := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(catalogColumns).
		AddRow("Scope 3 Playbook", "Supplier engagement", "https://c.example/s3", "emissions", published, int64(91)).
		AddRow("Draft note", nil, nil, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM esg_documents")).
		WithArgs("%scope 3%", 10).
		WillReturnRows(rows)

	c, err := NewPostgresCatalog(db, "")
	require.NoError(t, err)

	results, err := c.Fetch(context.Background(), "scope 3", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Scope 3 Playbook", results[0].Title)
	assert.Equal(t, "emissions", results[0].Category)
	require.NotNil(t, results[0].Date)
	parsed, err := time.Parse(time.RFC3339Nano, *results[0].Date)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(published))
	require.NotNil(t, results[0].Confidence)
	assert.Equal(t, 91, *results[0].Confidence)
	assert.Equal(t, PostgresSourceName, results[0].Source)

	assert.Equal(t, "Draft note", results[1].Title)
	assert.Empty(t, results[1].Snippet)
	assert.Nil(t, results[1].Date)
	assert.Nil(t, results[1].Confidence)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_QueryShape(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM reports\.esg_docs\s+WHERE title ILIKE \$1 OR snippet ILIKE \$1\s+ORDER BY published_at DESC NULLS LAST\s+LIMIT \$2`).
		WithArgs(`%100\% renewable%`, 1).
		WillReturnRows(sqlmock.NewRows(catalogColumns))

	c, err := NewPostgresCatalog(db, "reports.esg_docs")
	require.NoError(t, err)

	results, err := c.Fetch(context.Background(), "100% renewable", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	c, err := NewPostgresCatalog(db, "")
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "water", 5)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, stdErr.Code)
	assert.Equal(t, DefaultTable, stdErr.Metadata["table"])
	assert.Contains(t, stdErr.Details, "relation does not exist")
}

func TestNewPostgresCatalog_RejectsUnsafeTable(t *testing.T) {
	for _, table := range []string{"docs; DROP TABLE x", "1docs", "a.b.c", "docs--"} {
		_, err := NewPostgresCatalog(nil, table)
		assert.Error(t, err, table)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\ok`, escapeLike(`50% off_now \ok`))
}
