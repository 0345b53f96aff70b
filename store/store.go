// Package store provides an optional sqlite-backed idempotency cache:
// skip re-running extraction for a record whose text hasn't changed
// since the last run. Adapted from the teacher's full RAG persistence
// layer (documents/chunks/entities/relationships/communities) down to
// the one table this domain actually needs.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dpeckham/kgx/pipeline"
)

// Store wraps a SQLite database holding cached extraction results.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path and runs any
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ContentHash returns the cache key for a record's text, matching the
// teacher's own sha256-hex content-hash idiom for change detection.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached result for (recordID, domainID) if its
// stored content hash matches hash, and whether it was found.
func (s *Store) Lookup(ctx context.Context, domainID, recordID, hash string) (pipeline.ExtractionResult, bool, error) {
	var storedHash, payload string
	row := s.db.QueryRowContext(ctx,
		`SELECT content_hash, result FROM extraction_cache WHERE record_id = ? AND domain_id = ?`,
		recordID, domainID)
	if err := row.Scan(&storedHash, &payload); err != nil {
		if err == sql.ErrNoRows {
			return pipeline.ExtractionResult{}, false, nil
		}
		return pipeline.ExtractionResult{}, false, fmt.Errorf("store: lookup %s/%s: %w", domainID, recordID, err)
	}
	if storedHash != hash {
		return pipeline.ExtractionResult{}, false, nil
	}
	var result pipeline.ExtractionResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return pipeline.ExtractionResult{}, false, fmt.Errorf("store: decode cached result for %s/%s: %w", domainID, recordID, err)
	}
	return result, true, nil
}

// Put stores (or replaces) the cached result for (recordID, domainID).
func (s *Store) Put(ctx context.Context, domainID, recordID, hash string, result pipeline.ExtractionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("store: encode result for %s/%s: %w", domainID, recordID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extraction_cache (record_id, domain_id, content_hash, result) VALUES (?, ?, ?, ?)
		 ON CONFLICT(record_id, domain_id) DO UPDATE SET content_hash = excluded.content_hash, result = excluded.result`,
		recordID, domainID, hash, string(payload))
	if err != nil {
		return fmt.Errorf("store: put %s/%s: %w", domainID, recordID, err)
	}
	return nil
}
