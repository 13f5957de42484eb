package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Request returns the cached response body for url.
func (s *Store) Request(ctx context.Context, url string) (string, bool, error) {
	var result string
	err := s.db.QueryRowContext(ctx, `SELECT result FROM http_requests WHERE url = ?`, url).Scan(&result)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read request %s: %w", url, err)
	}
	return result, true, nil
}

// PutRequest stores a response body. An existing entry is kept.
func (s *Store) PutRequest(ctx context.Context, url, result string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO http_requests (url, result)
		VALUES (?, ?)
		ON CONFLICT(url) DO NOTHING
	`, url, result)
	if err != nil {
		return fmt.Errorf("write request %s: %w", url, err)
	}
	return nil
}

// Labels returns the cached labels of ids. Ids missing from the cache are
// absent from the map; ids cached as unlabelled map to nil.
func (s *Store) Labels(ctx context.Context, ids []string) (map[string]*string, error) {
	out := make(map[string]*string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label FROM labels WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var label sql.NullString
		if err := rows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("read labels: %w", err)
		}
		if label.Valid {
			l := label.String
			out[id] = &l
		} else {
			out[id] = nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return out, nil
}

// PutLabels stores labels in one transaction. A nil label records that the
// id has none.
func (s *Store) PutLabels(ctx context.Context, labels map[string]*string) error {
	if len(labels) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write labels: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO labels (id, label)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write labels: prepare: %w", err)
	}
	defer stmt.Close()

	for id, label := range labels {
		var value sql.NullString
		if label != nil {
			value = sql.NullString{String: *label, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, value); err != nil {
			return fmt.Errorf("write labels: %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write labels: commit: %w", err)
	}
	return nil
}

// AltLabels returns the cached aliases of id.
func (s *Store) AltLabels(ctx context.Context, id string) ([]string, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT labels FROM alt_labels WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read alt labels %s: %w", id, err)
	}
	var labels []string
	if err := json.Unmarshal([]byte(data), &labels); err != nil {
		return nil, false, fmt.Errorf("read alt labels %s: %w", id, err)
	}
	return labels, true, nil
}

// PutAltLabels stores the aliases of id. An existing entry is kept.
func (s *Store) PutAltLabels(ctx context.Context, id string, labels []string) error {
	if labels == nil {
		labels = []string{}
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("write alt labels %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alt_labels (id, labels)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, string(data))
	if err != nil {
		return fmt.Errorf("write alt labels %s: %w", id, err)
	}
	return nil
}
