// Package uid provides the 128-bit stable identifiers used to address every
// first-class entity in the simulation core (populations, projections,
// endpoints, backends) and the per-entity tag map attached to them.
package uid

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// UID is a 128-bit opaque identifier. Two UIDs with equal byte content are
// considered the same entity; UID is comparable and usable as a map key.
type UID struct {
	tag [16]byte
}

// Null returns the null UID, which compares false in boolean context and
// equal to any other null UID.
func Null() UID {
	return UID{}
}

// NewRandom returns a random UID backed by a version-4 UUID.
func NewRandom() UID {
	var u UID
	id := uuid.New()
	copy(u.tag[:], id[:])
	return u
}

// counter backs the deterministic generator. It starts at 1, matching the
// original platform's continuously_uid_generator.
var counter uint64 = 1

var counterMu sync.Mutex

// NewDeterministic returns the next UID from the deterministic, monotonically
// incrementing generator. The counter value is written little-endian into the
// first 8 bytes of the UID, leaving the rest zero, so that
// ResetDeterministic(v); NewDeterministic() yields a UID whose first byte is
// the low byte of v.
func NewDeterministic() UID {
	c := atomic.AddUint64(&counter, 1) - 1
	var u UID
	binary.LittleEndian.PutUint64(u.tag[:8], c)
	return u
}

// ResetDeterministic resets the deterministic generator's internal counter so
// that the next call to NewDeterministic returns a UID built from
// initialValue. Intended for test determinism only.
func ResetDeterministic(initialValue uint64) {
	counterMu.Lock()
	defer counterMu.Unlock()
	atomic.StoreUint64(&counter, initialValue)
}

// IsNull reports whether uid is the null UID.
func (u UID) IsNull() bool {
	return u == UID{}
}

// Valid reports whether uid is non-null; it is the boolean-context
// equivalent of the original's `explicit operator bool()`.
func (u UID) Valid() bool {
	return !u.IsNull()
}

// Less provides a total order over UIDs so they can be sorted
// deterministically.
func (u UID) Less(other UID) bool {
	for i := 0; i < len(u.tag); i++ {
		if u.tag[i] != other.tag[i] {
			return u.tag[i] < other.tag[i]
		}
	}
	return false
}

// String renders the UID in canonical UUID form.
func (u UID) String() string {
	return uuid.UUID(u.tag).String()
}

// Bytes returns a copy of the underlying 16 bytes, mainly for serialization.
func (u UID) Bytes() [16]byte {
	return u.tag
}

// FromBytes builds a UID from a raw 16-byte value, e.g. when round-tripping
// through msgpack or SQLite BLOBs.
func FromBytes(b [16]byte) UID {
	return UID{tag: b}
}

// MarshalBinary implements encoding.BinaryMarshaler so UID can be used
// directly as a msgpack/gob field.
func (u UID) MarshalBinary() ([]byte, error) {
	out := make([]byte, 16)
	copy(out, u.tag[:])
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (u *UID) UnmarshalBinary(data []byte) error {
	var tag [16]byte
	copy(tag[:], data)
	u.tag = tag
	return nil
}
