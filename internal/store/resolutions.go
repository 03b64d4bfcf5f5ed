// Package store persists resolution records in SQLite, fronted by a
// Bloom-filter + LRU hot cache.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver.
	"go.uber.org/zap"

	"fanlink/internal/core"
	"fanlink/pkg/platlink"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	identity_key        TEXT PRIMARY KEY,
	smart_link_id       TEXT,
	isrc                TEXT,
	fingerprint_id      TEXT,
	title               TEXT,
	artist              TEXT,
	album               TEXT,
	duration_ms         INTEGER,
	cover_url           TEXT,
	canonical_platform  TEXT,
	canonical_url       TEXT,
	links_json          TEXT NOT NULL,
	raw_ids_json        TEXT NOT NULL,
	confidence          REAL NOT NULL,
	resolver_path       TEXT NOT NULL,
	needs_manual_review INTEGER NOT NULL,
	created_at          TIMESTAMP NOT NULL,
	updated_at          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resolutions_smart_link ON resolutions(smart_link_id);
`

// Store reads and writes resolution records. Records are overwritten, never
// deleted; concurrent upserts of the same identity are last-write-wins.
type Store struct {
	db     *sql.DB
	cache  *resultCache
	logger *zap.Logger
}

// Open opens (or creates) the SQLite database at cfg.DBPath, applies the
// schema and warms the hot cache's Bloom filter with known identity keys.
func Open(cfg *core.StoreConfig, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:     db,
		cache:  newResultCache(cfg.CacheSize, cfg.BloomFPRate),
		logger: logger,
	}

	if err := s.warmBloom(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to warm identity filter: %w", err)
	}

	return s, nil
}

// warmBloom loads every persisted identity key into the Bloom filter so
// negative cache answers stay authoritative across restarts.
func (s *Store) warmBloom() error {
	rows, err := s.db.Query(`SELECT identity_key FROM resolutions`)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	count := 0
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return err
		}
		s.cache.bloom.AddString(key)
		count++
	}
	if count > 0 {
		s.logger.Info("Warmed identity filter", zap.Int("identities", count))
	}
	return rows.Err()
}

// Get returns the persisted record for an identity key, or nil when none
// exists.
func (s *Store) Get(ctx context.Context, identityKey string) (*core.Record, error) {
	if identityKey == "" {
		return nil, nil
	}

	if rec, ok := s.cache.get(identityKey); ok {
		return rec, nil
	}
	if !s.cache.mayContain(identityKey) {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT identity_key, smart_link_id, isrc, fingerprint_id,
		       title, artist, album, duration_ms, cover_url,
		       canonical_platform, canonical_url,
		       links_json, raw_ids_json,
		       confidence, resolver_path, needs_manual_review,
		       created_at, updated_at
		FROM resolutions WHERE identity_key = ?`, identityKey)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read resolution: %w", err)
	}

	s.cache.put(identityKey, rec)
	return rec, nil
}

// Upsert writes a resolution record, overwriting any previous record for
// the same identity. created_at is preserved on overwrite.
func (s *Store) Upsert(ctx context.Context, rec *core.Record) error {
	if rec.IdentityKey == "" {
		return errors.New("record has no identity key")
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		// Keep the original creation time on overwrite so the cached copy
		// matches what the database preserves.
		var existing sql.NullTime
		err := s.db.QueryRowContext(ctx,
			`SELECT created_at FROM resolutions WHERE identity_key = ?`,
			rec.IdentityKey).Scan(&existing)
		if err == nil && existing.Valid {
			rec.CreatedAt = existing.Time
		} else {
			rec.CreatedAt = now
		}
	}
	rec.UpdatedAt = now

	linksJSON, err := json.Marshal(rec.Links)
	if err != nil {
		return fmt.Errorf("failed to encode links: %w", err)
	}
	rawIDsJSON, err := json.Marshal(rec.RawIDs)
	if err != nil {
		return fmt.Errorf("failed to encode raw identifiers: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolutions (
			identity_key, smart_link_id, isrc, fingerprint_id,
			title, artist, album, duration_ms, cover_url,
			canonical_platform, canonical_url,
			links_json, raw_ids_json,
			confidence, resolver_path, needs_manual_review,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity_key) DO UPDATE SET
			smart_link_id = excluded.smart_link_id,
			isrc = excluded.isrc,
			fingerprint_id = excluded.fingerprint_id,
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			duration_ms = excluded.duration_ms,
			cover_url = excluded.cover_url,
			canonical_platform = excluded.canonical_platform,
			canonical_url = excluded.canonical_url,
			links_json = excluded.links_json,
			raw_ids_json = excluded.raw_ids_json,
			confidence = excluded.confidence,
			resolver_path = excluded.resolver_path,
			needs_manual_review = excluded.needs_manual_review,
			updated_at = excluded.updated_at`,
		rec.IdentityKey, rec.SmartLinkID, rec.ISRC, rec.FingerprintID,
		rec.Track.Title, rec.Track.Artist, rec.Track.Album, rec.Track.DurationMS, rec.Track.CoverURL,
		string(rec.CanonicalPlatform), rec.CanonicalURL,
		string(linksJSON), string(rawIDsJSON),
		rec.Confidence, string(rec.ResolverPath), rec.NeedsManualReview,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert resolution: %w", err)
	}

	s.cache.put(rec.IdentityKey, rec)
	return nil
}

// CachedIdentities returns the number of records currently in the hot cache.
func (s *Store) CachedIdentities() int {
	return s.cache.size()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*core.Record, error) {
	var (
		rec               core.Record
		canonicalPlatform string
		resolverPath      string
		linksJSON         string
		rawIDsJSON        string
	)

	err := row.Scan(
		&rec.IdentityKey, &rec.SmartLinkID, &rec.ISRC, &rec.FingerprintID,
		&rec.Track.Title, &rec.Track.Artist, &rec.Track.Album, &rec.Track.DurationMS, &rec.Track.CoverURL,
		&canonicalPlatform, &rec.CanonicalURL,
		&linksJSON, &rawIDsJSON,
		&rec.Confidence, &resolverPath, &rec.NeedsManualReview,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.CanonicalPlatform = platlink.Platform(canonicalPlatform)
	rec.ResolverPath = core.ResolverPath(resolverPath)

	if err := json.Unmarshal([]byte(linksJSON), &rec.Links); err != nil {
		return nil, fmt.Errorf("failed to decode links: %w", err)
	}
	if err := json.Unmarshal([]byte(rawIDsJSON), &rec.RawIDs); err != nil {
		return nil, fmt.Errorf("failed to decode raw identifiers: %w", err)
	}

	return &rec, nil
}
