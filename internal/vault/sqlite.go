// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS vault_payloads (
	run_id         TEXT PRIMARY KEY,
	opportunity_id TEXT NOT NULL,
	state          TEXT NOT NULL,
	zip            TEXT NOT NULL,
	decision       TEXT NOT NULL,
	score          REAL NOT NULL,
	recorded_at    TEXT NOT NULL,
	payload        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vault_state ON vault_payloads(state);
CREATE INDEX IF NOT EXISTS idx_vault_opportunity ON vault_payloads(opportunity_id);
`

// SQLiteStore implements Store on SQLite. Indexed columns are duplicated
// from the JSON payload for filtering.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. ":memory:" is accepted.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create vault dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and
	// serialises writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create vault schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, p Payload) error {
	if err := checkInsert(p); err != nil {
		return err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vault_payloads(run_id, opportunity_id, state, zip, decision, score, recorded_at, payload)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID, p.OpportunityID, strings.ToUpper(p.State), p.Zip, string(p.Decision), p.Score, p.Timestamp, string(body))
	if err != nil {
		return fmt.Errorf("insert payload %s: %w", p.RunID, err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]Payload, error) {
	var (
		where []string
		args  []any
	)
	if f.OpportunityID != "" {
		where = append(where, "opportunity_id = ?")
		args = append(args, f.OpportunityID)
	}
	if f.State != "" {
		where = append(where, "state = ?")
		args = append(args, strings.ToUpper(f.State))
	}
	if f.Decision != "" {
		where = append(where, "decision = ?")
		args = append(args, strings.ToUpper(f.Decision))
	}

	q := "SELECT payload FROM vault_payloads"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY recorded_at DESC, run_id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query vault: %w", err)
	}
	defer rows.Close()

	out := []Payload{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		var p Payload
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
