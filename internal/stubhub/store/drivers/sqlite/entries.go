package sqlite

import (
	"context"

	"github.com/hubcheck/hubcheck/internal/stubhub/domain"
	"github.com/hubcheck/hubcheck/internal/stubhub/store"
)

type entriesRepo struct {
	q querier
}

const entryColumns = `id, title, body, tags, created_by, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (domain.Entry, error) {
	var e domain.Entry
	var tags string
	err := row.Scan(&e.ID, &e.Title, &e.Body, &tags, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Entry{}, mapNotFound(err)
	}
	e.Tags = splitScopes(tags)
	return e, nil
}

func (r *entriesRepo) GetEntryByID(ctx context.Context, id string) (domain.Entry, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE id = ?
	`, id)
	return scanEntry(row)
}

func (r *entriesRepo) ListEntries(ctx context.Context) ([]domain.Entry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *entriesRepo) CreateEntry(ctx context.Context, e domain.Entry) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO entries (id, title, body, tags, created_by)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.Title, e.Body, joinScopes(e.Tags), e.CreatedBy)
	return err
}

func (r *entriesRepo) UpdateEntry(ctx context.Context, e domain.Entry) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE entries
		SET title = ?, body = ?, tags = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, e.Title, e.Body, joinScopes(e.Tags), e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *entriesRepo) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
