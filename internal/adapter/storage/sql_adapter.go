package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/inventory-store/internal/core/domain"
)

var ErrEncodingVersion = errors.New("unsupported snapshot encoding version")

// Column types are chosen to be accepted by both MySQL and SQLite. Keys are
// bound as bytes so SQLite stores them as blobs rather than coercing numeric
// looking keys.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS inventory_snapshots (
		id           VARCHAR(36) NOT NULL PRIMARY KEY,
		encver       INT         NOT NULL,
		record_count INT         NOT NULL,
		created_at   BIGINT      NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_snapshot_records (
		snapshot_id VARCHAR(36)     NOT NULL,
		inv_key     VARBINARY(1024) NOT NULL,
		payload     VARBINARY(8)    NOT NULL,
		PRIMARY KEY (snapshot_id, inv_key)
	)`,
}

// SQLAdapter keeps the latest snapshot in a relational database. Each record
// is stored as its 8-byte encoding; the snapshot row carries the encoding
// version.
type SQLAdapter struct {
	db *sql.DB
}

func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Migrate creates the snapshot tables if they do not exist.
func (s *SQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLAdapter) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventory_snapshots (id, encver, record_count, created_at)
		VALUES (?, ?, ?, ?)`,
		snap.ID, domain.EncodingVersion, len(snap.Entries), snap.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory_snapshot_records (snapshot_id, inv_key, payload)
		VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert record: %w", err)
	}
	defer stmt.Close()

	for _, entry := range snap.Entries {
		payload, err := entry.Inventory.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode %s: %w", entry.Key, err)
		}
		if _, err := stmt.ExecContext(ctx, snap.ID, []byte(entry.Key), payload); err != nil {
			return fmt.Errorf("insert record %s: %w", entry.Key, err)
		}
	}

	// Only the latest snapshot is kept.
	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_snapshot_records WHERE snapshot_id <> ?`, snap.ID); err != nil {
		return fmt.Errorf("prune records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_snapshots WHERE id <> ?`, snap.ID); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	return tx.Commit()
}

func (s *SQLAdapter) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var (
		snap      domain.Snapshot
		encver    int
		count     int
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, encver, record_count, created_at
		FROM inventory_snapshots ORDER BY created_at DESC LIMIT 1`,
	).Scan(&snap.ID, &encver, &count, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	if encver != domain.EncodingVersion {
		return nil, fmt.Errorf("%w: %d", ErrEncodingVersion, encver)
	}
	snap.CreatedAt = time.Unix(0, createdAt).UTC()

	rows, err := s.db.QueryContext(ctx, `
		SELECT inv_key, payload FROM inventory_snapshot_records
		WHERE snapshot_id = ? ORDER BY inv_key`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	snap.Entries = make([]domain.SnapshotEntry, 0, count)
	for rows.Next() {
		var (
			key     string
			payload []byte
		)
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var inv domain.Inventory
		if err := inv.UnmarshalBinary(payload); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		snap.Entries = append(snap.Entries, domain.SnapshotEntry{Key: key, Inventory: inv})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	if len(snap.Entries) != count {
		return nil, fmt.Errorf("%w: snapshot %s has %d records, header says %d",
			domain.ErrTruncated, snap.ID, len(snap.Entries), count)
	}

	return &snap, nil
}
