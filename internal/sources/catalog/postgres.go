// internal/sources/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	apperrors "sustainatrend-search/internal/common/errors"
	"sustainatrend-search/internal/models"
)

const (
	PostgresSourceName = "catalog-postgres"
	DefaultTable       = "esg_documents"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

type PostgresCatalog struct {
	db    *sql.DB
	table string
	query string
}

// NewPostgresCatalog validates the table name since it is interpolated into the statement.
func NewPostgresCatalog(db *sql.DB, table string) (*PostgresCatalog, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	return &PostgresCatalog{
		db:    db,
		table: table,
		query: fmt.Sprintf(`
		SELECT title, snippet, url, category, published_at, confidence
		FROM %s
		WHERE title ILIKE $1 OR snippet ILIKE $1
		ORDER BY published_at DESC NULLS LAST
		LIMIT $2`, table),
	}, nil
}

func (c *PostgresCatalog) Name() string { return PostgresSourceName }

func (c *PostgresCatalog) Fetch(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if maxResults < 1 {
		maxResults = 1
	}

	rows, err := c.db.QueryContext(ctx, c.query, "%"+escapeLike(query)+"%", maxResults)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(c.table, err)
	}
	defer rows.Close()

	results := make([]models.SearchResult, 0, maxResults)
	for rows.Next() {
		var (
			title                         string
			snippet, url, category, pubAt sql.NullString
			confidence                    sql.NullInt64
		)
		if err := rows.Scan(&title, &snippet, &url, &category, &pubAt, &confidence); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError(c.table, err)
		}

		r := models.SearchResult{
			Title:    title,
			Snippet:  snippet.String,
			URL:      url.String,
			Category: category.String,
			Source:   PostgresSourceName,
		}
		if pubAt.Valid {
			r.Date = models.StringPtr(pubAt.String)
		}
		if confidence.Valid {
			r.Confidence = models.IntPtr(int(confidence.Int64))
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(c.table, err)
	}
	return results, nil
}

var likeEscaper = regexp.MustCompile(`[\\%_]`)

func escapeLike(s string) string {
	return likeEscaper.ReplaceAllString(s, `\$0`)
}
