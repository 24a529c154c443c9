package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Create inserts a pending row for the URL, or returns the existing row's id
// untouched when the URL was submitted before. The no-op DO UPDATE makes
// RETURNING yield the id on both paths.
func (r *PostgresRepo) Create(ctx context.Context, url string) (int64, error) {
	var id int64
	query := `INSERT INTO documents (url, status) VALUES ($1, 'pending')
		ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, url).Scan(&id); err != nil {
		return 0, fmt.Errorf("create document: %w", err)
	}
	return id, nil
}

// Transition overwrites status, updated_at, error_message and chunks_count as
// a single statement so readers never observe a partial update. errMsg is
// stored as NULL when empty.
func (r *PostgresRepo) Transition(ctx context.Context, url string, status Status, errMsg string, chunksCount int) error {
	var msg sql.NullString
	if errMsg != "" {
		msg = sql.NullString{String: errMsg, Valid: true}
	}

	query := `UPDATE documents SET status = $1, updated_at = NOW(), error_message = $2, chunks_count = $3 WHERE url = $4`
	res, err := r.db.ExecContext(ctx, query, string(status), msg, chunksCount, url)
	if err != nil {
		return fmt.Errorf("transition document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, url string) (*Document, error) {
	doc := &Document{}
	var msg sql.NullString
	query := `SELECT id, url, status, created_at, updated_at, error_message, chunks_count FROM documents WHERE url = $1`
	err := r.db.QueryRowContext(ctx, query, url).
		Scan(&doc.ID, &doc.URL, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt, &msg, &doc.ChunksCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if msg.Valid {
		doc.ErrorMessage = &msg.String
	}
	return doc, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT id, url, status, created_at, updated_at, error_message, chunks_count FROM documents ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var msg sql.NullString
		if err := rows.Scan(&doc.ID, &doc.URL, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt, &msg, &doc.ChunksCount); err != nil {
			return nil, err
		}
		if msg.Valid {
			doc.ErrorMessage = &msg.String
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}
