package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

// PageStore is the read-only lookup from (document, page) to page text.
// The pages table is populated by the ingestion pipeline, out of scope here.
type PageStore struct {
	db *sql.DB
}

func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Get resolves one page by exact key. A miss is a normal outcome reported
// through found=false, never an error.
func (s *PageStore) Get(ctx context.Context, documentID string, page int) (domain.PageRow, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT document_id, page, text
FROM pages
WHERE document_id = $1 AND page = $2
`, documentID, page)

	var out domain.PageRow
	err := row.Scan(&out.DocumentID, &out.Page, &out.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PageRow{}, false, nil
		}
		return domain.PageRow{}, false, fmt.Errorf("scan page: %w", err)
	}
	return out, true, nil
}
