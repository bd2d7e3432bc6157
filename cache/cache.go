package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tsawler/pdfoutline/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS outlines (
	file_hash   TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	source_file TEXT NOT NULL,
	outline     TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (file_hash, fingerprint)
);`

// Key identifies a cached outline: the content hash of the PDF and a
// fingerprint of the settings that shaped the result.
type Key struct {
	FileHash    string
	Fingerprint string
}

// Cache stores outlines in SQLite. It is safe for concurrent use.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the cache database at path. ":memory:" opens a
// private in-memory cache.
func Open(path string) (*Cache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cache: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		schema,
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: %s: %w", firstLine(p), err)
		}
	}
	return &Cache{db: db, now: time.Now}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached outline for key. The boolean is false on a miss.
func (c *Cache) Get(ctx context.Context, key Key) (*model.DocumentOutline, bool, error) {
	var data string
	err := c.db.QueryRowContext(ctx,
		`SELECT outline FROM outlines WHERE file_hash = ? AND fingerprint = ?`,
		key.FileHash, key.Fingerprint).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get: %w", err)
	}

	var o model.DocumentOutline
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return nil, false, fmt.Errorf("cache: decode: %w", err)
	}
	if o.Entries == nil {
		o.Entries = []model.OutlineEntry{}
	}
	return &o, true, nil
}

// Put stores the outline for key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key Key, o *model.DocumentOutline) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO outlines (file_hash, fingerprint, source_file, outline, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		key.FileHash, key.Fingerprint, o.Metadata.SourceFile, string(data), c.now().Unix())
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// Len returns the number of cached outlines.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outlines`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}

// Prune deletes entries older than maxAge and returns how many were removed.
func (c *Cache) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := c.now().Add(-maxAge).Unix()
	res, err := c.db.ExecContext(ctx, `DELETE FROM outlines WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache: prune: %w", err)
	}
	return res.RowsAffected()
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Fingerprint hashes the JSON form of v, typically the settings that
// influence an outline. Equal settings give equal fingerprints.
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' && i > 0 {
			return s[:i]
		}
	}
	return s
}
