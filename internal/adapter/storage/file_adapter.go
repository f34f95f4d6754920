package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/inventory-store/internal/core/domain"
)

var (
	snapshotMagic  = []byte("INVSNAP\x00")
	ErrNotSnapshot = errors.New("not an inventory snapshot file")
)

// FileAdapter writes snapshots to a single file:
//
//	magic[8] | encver u16 | id[16] | created_at i64 | count uvarint
//	count * ( keylen uvarint | key | record[8] )
//
// All fixed-width integers are little-endian.
type FileAdapter struct {
	path string
}

func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

// SaveSnapshot writes to a temp file and renames it over the previous one.
func (f *FileAdapter) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	id, err := uuid.Parse(snap.ID)
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	w := bufio.NewWriter(tmp)
	if err := writeSnapshot(ctx, w, id, snap); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (f *FileAdapter) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	return readSnapshot(ctx, bufio.NewReader(file))
}

func writeSnapshot(ctx context.Context, w io.Writer, id uuid.UUID, snap domain.Snapshot) error {
	header := make([]byte, 0, len(snapshotMagic)+2+16+8+binary.MaxVarintLen64)
	header = append(header, snapshotMagic...)
	header = binary.LittleEndian.AppendUint16(header, domain.EncodingVersion)
	header = append(header, id[:]...)
	header = binary.LittleEndian.AppendUint64(header, uint64(snap.CreatedAt.UnixNano()))
	header = binary.AppendUvarint(header, uint64(len(snap.Entries)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var keyLen [binary.MaxVarintLen64]byte
	for _, entry := range snap.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := binary.PutUvarint(keyLen[:], uint64(len(entry.Key)))
		if _, err := w.Write(keyLen[:n]); err != nil {
			return fmt.Errorf("write key %s: %w", entry.Key, err)
		}
		if _, err := io.WriteString(w, entry.Key); err != nil {
			return fmt.Errorf("write key %s: %w", entry.Key, err)
		}
		if err := domain.Save(w, entry.Inventory); err != nil {
			return fmt.Errorf("write record %s: %w", entry.Key, err)
		}
	}
	return nil
}

func readSnapshot(ctx context.Context, r *bufio.Reader) (*domain.Snapshot, error) {
	var fixed [8 + 2 + 16 + 8]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, truncated("header", err)
	}
	if !bytes.Equal(fixed[:8], snapshotMagic) {
		return nil, ErrNotSnapshot
	}
	if v := binary.LittleEndian.Uint16(fixed[8:10]); v != domain.EncodingVersion {
		return nil, fmt.Errorf("%w: %d", ErrEncodingVersion, v)
	}
	id, err := uuid.FromBytes(fixed[10:26])
	if err != nil {
		return nil, fmt.Errorf("snapshot id: %w", err)
	}
	createdAt := int64(binary.LittleEndian.Uint64(fixed[26:34]))

	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, truncated("record count", err)
	}

	snap := &domain.Snapshot{
		ID:        id.String(),
		CreatedAt: time.Unix(0, createdAt).UTC(),
	}
	for i := uint64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, truncated("key length", err)
		}
		if n > domain.MaxKeyLen {
			return nil, fmt.Errorf("%w: key length %d", domain.ErrCorruptRecord, n)
		}
		key := make([]byte, n)
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, truncated("key", err)
		}
		inv, err := domain.Load(r)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", key, err)
		}
		snap.Entries = append(snap.Entries, domain.SnapshotEntry{Key: string(key), Inventory: inv})
	}
	return snap, nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("read %s: %w", what, domain.ErrTruncated)
	}
	return fmt.Errorf("read %s: %w", what, err)
}
