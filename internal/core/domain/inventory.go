package domain

import "math"

// Size is the fixed footprint of an Inventory: two packed uint32 fields.
const Size = 8

// Inventory is a bounded counter: Current never exceeds Total.
type Inventory struct {
	total   uint32
	current uint32
}

func New(total uint32) Inventory {
	return Inventory{total: total, current: total}
}

// Reset reinitializes the record to a full inventory of total.
func (inv *Inventory) Reset(total uint32) {
	inv.total = total
	inv.current = total
}

// Increase raises both bounds by the same amount. Addition wraps on overflow;
// callers that must not wrap check CanIncrease first.
func (inv *Inventory) Increase(by uint32) (total, current uint32) {
	inv.total += by
	inv.current += by
	return inv.total, inv.current
}

// CanIncrease reports whether Increase(by) stays within 32 bits.
func (inv *Inventory) CanIncrease(by uint32) bool {
	return uint64(inv.total)+uint64(by) <= math.MaxUint32
}

// Take deducts count from current. It returns false, leaving the record
// untouched, on shortage.
func (inv *Inventory) Take(count uint32) (uint32, bool) {
	if inv.current < count {
		return inv.current, false
	}
	inv.current -= count
	return inv.current, true
}

// Return puts amount back. It returns false, leaving the record untouched,
// when current would exceed total.
func (inv *Inventory) Return(amount uint32) (uint32, bool) {
	current := uint64(inv.current) + uint64(amount)
	if current > uint64(inv.total) {
		return inv.current, false
	}
	inv.current = uint32(current)
	return inv.current, true
}

func (inv *Inventory) Total() uint32 {
	return inv.total
}

func (inv *Inventory) Current() uint32 {
	return inv.current
}

// Valid reports whether the record holds current <= total.
func (inv *Inventory) Valid() bool {
	return inv.current <= inv.total
}

// MemUsage reports the resident size of the record.
func (inv *Inventory) MemUsage() int {
	return Size
}
