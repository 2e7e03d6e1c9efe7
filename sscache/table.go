package sscache

import (
	"errors"

	"github.com/soypat/subsurface"
)

// Table capacity and the slot reserved for the neutral no-scattering cache.
const (
	TableCap    = 16
	NeutralSlot = 0
)

var (
	errReservedSlot   = errors.New("slot 0 is reserved for the neutral cache")
	errSlotOutOfRange = errors.New("slot index out of table range")
)

// Table holds the fixed array of packed caches the shading pass binds as a
// single constant buffer. Consumers key into it positionally so slots keep
// their index for the lifetime of the table, with [NeutralSlot] permanently
// holding the [Neutral] cache.
type Table struct {
	caches [TableCap]Cache
}

// NewTable returns a table with every slot set to the neutral cache, so
// unassigned material indices shade without scattering.
func NewTable() *Table {
	t := &Table{}
	for i := range t.caches {
		t.caches[i] = Neutral()
	}
	return t
}

// Set packs p into the given slot. The neutral slot and indices outside
// [1, TableCap) are rejected.
func (t *Table) Set(slot int, p *subsurface.Profile) error {
	switch {
	case slot == NeutralSlot:
		return errReservedSlot
	case slot < 0 || slot >= TableCap:
		return errSlotOutOfRange
	}
	t.caches[slot] = Pack(p)
	return nil
}

// Reset restores a slot to the neutral cache.
func (t *Table) Reset(slot int) error {
	switch {
	case slot == NeutralSlot:
		return errReservedSlot
	case slot < 0 || slot >= TableCap:
		return errSlotOutOfRange
	}
	t.caches[slot] = Neutral()
	return nil
}

// At returns the cache packed into slot.
func (t *Table) At(slot int) (Cache, error) {
	if slot < 0 || slot >= TableCap {
		return Cache{}, errSlotOutOfRange
	}
	return t.caches[slot], nil
}

// All returns all slots in binding order for constant buffer upload. The
// returned slice aliases table state and must not be mutated.
func (t *Table) All() []Cache {
	return t.caches[:]
}
