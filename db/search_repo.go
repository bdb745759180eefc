package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SearchRecord is one locally remembered search submission.
type SearchRecord struct {
	ID            string
	Query         string
	State         string
	FileCount     int
	ResponseCount int
	StartedAt     time.Time
	UpdatedAt     time.Time
}

type SearchRepository struct {
	db Executor
}

func NewSearchRepository(db Executor) *SearchRepository {
	return &SearchRepository{db: db}
}

func (r *SearchRepository) Insert(id, query string, startedAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO searches (id, query, started_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, id, query, startedAt)
	return err
}

func (r *SearchRepository) UpdateState(id, state string, fileCount, responseCount int) error {
	_, err := r.db.Exec(`
		UPDATE searches
		SET state = ?, file_count = ?, response_count = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, state, fileCount, responseCount, id)
	return err
}

func (r *SearchRepository) Get(id string) (*SearchRecord, error) {
	var rec SearchRecord
	err := r.db.QueryRow(`
		SELECT id, query, state, file_count, response_count, started_at, updated_at
		FROM searches
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Query, &rec.State, &rec.FileCount, &rec.ResponseCount, &rec.StartedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("search not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SearchRepository) List(limit int) ([]SearchRecord, error) {
	rows, err := r.db.Query(`
		SELECT id, query, state, file_count, response_count, started_at, updated_at
		FROM searches
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.State, &rec.FileCount, &rec.ResponseCount, &rec.StartedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SearchRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM searches WHERE id = ?`, id)
	return err
}
