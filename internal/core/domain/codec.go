package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// EncodingVersion identifies the record layout below. It is carried by the
// enclosing snapshot format, never inside the record bytes.
const EncodingVersion = 1

var (
	ErrTruncated     = errors.New("truncated inventory record")
	ErrCorruptRecord = errors.New("corrupt inventory record")
)

// Record layout, little-endian:
//
//	[0:4] total
//	[4:8] current
//
// Read as a single little-endian uint64 this is total | current<<32.

func (inv Inventory) MarshalBinary() ([]byte, error) {
	buf := make([]byte, Size)
	inv.put(buf)
	return buf, nil
}

func (inv *Inventory) UnmarshalBinary(data []byte) error {
	if len(data) < Size {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrTruncated, len(data), Size)
	}
	if len(data) > Size {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrCorruptRecord, len(data), Size)
	}
	decoded := Inventory{
		total:   binary.LittleEndian.Uint32(data[0:4]),
		current: binary.LittleEndian.Uint32(data[4:8]),
	}
	if !decoded.Valid() {
		return fmt.Errorf("%w: current %d exceeds total %d", ErrCorruptRecord, decoded.current, decoded.total)
	}
	*inv = decoded
	return nil
}

// Packed returns the record as one uint64 in the layout above.
func (inv Inventory) Packed() uint64 {
	return uint64(inv.total) | uint64(inv.current)<<32
}

// Unpack is the inverse of Packed. It does not validate.
func Unpack(v uint64) Inventory {
	return Inventory{total: uint32(v), current: uint32(v >> 32)}
}

// Save writes the 8-byte encoding of inv to w.
func Save(w io.Writer, inv Inventory) error {
	var buf [Size]byte
	inv.put(buf[:])
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}

// Load reads one record from r. A short read fails with ErrTruncated and no
// record is produced.
func Load(r io.Reader) (Inventory, error) {
	var buf [Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Inventory{}, fmt.Errorf("load inventory: %w", ErrTruncated)
		}
		return Inventory{}, fmt.Errorf("load inventory: %w", err)
	}

	var inv Inventory
	if err := inv.UnmarshalBinary(buf[:]); err != nil {
		return Inventory{}, fmt.Errorf("load inventory: %w", err)
	}
	return inv, nil
}

func (inv Inventory) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], inv.total)
	binary.LittleEndian.PutUint32(buf[4:8], inv.current)
}
