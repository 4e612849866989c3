package comparison

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists saved comparison snapshots in the comparisons
// table. Append-only: rows are inserted and listed, never updated.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a comparison repository on an open database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a snapshot and returns its generated id.
func (r *Repository) Insert(rec record) (string, error) {
	id := uuid.New().String()

	_, err := r.db.Exec(`
		INSERT INTO comparisons (id, owner, country1, country2, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, rec.owner, rec.country1, rec.country2, string(rec.payload), rec.createdAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert comparison: %w", err)
	}

	return id, nil
}

// ListByOwner returns the owner's snapshots, newest first.
func (r *Repository) ListByOwner(owner string) ([]record, error) {
	rows, err := r.db.Query(`
		SELECT id, owner, country1, country2, payload, created_at
		FROM comparisons
		WHERE owner = ?
		ORDER BY created_at DESC, id`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close()

	var records []record
	for rows.Next() {
		var rec record
		var payload string
		var createdAt int64
		if err := rows.Scan(&rec.id, &rec.owner, &rec.country1, &rec.country2, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan comparison row: %w", err)
		}
		rec.payload = json.RawMessage(payload)
		rec.createdAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comparison rows: %w", err)
	}

	return records, nil
}

// record is the storage shape of a saved comparison. The result payload
// stays an opaque JSON blob at this layer.
type record struct {
	id        string
	owner     string
	country1  string
	country2  string
	payload   json.RawMessage
	createdAt time.Time
}
