package store

// schemaSQL is the DDL for the idempotency cache. Unlike the
// teacher's multi-table RAG schema (documents/chunks/entities/
// relationships/communities/vec_chunks), this cache has exactly one
// data table, extraction_cache: a record's last extraction result keyed
// by content hash, next to the schema_version bookkeeping table.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS extraction_cache (
    record_id    TEXT NOT NULL,
    domain_id    TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    result       JSON NOT NULL,
    created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (record_id, domain_id)
);

CREATE INDEX IF NOT EXISTS idx_extraction_cache_hash ON extraction_cache(content_hash);
`
