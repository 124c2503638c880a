package growablearray

// Array is a value-typed handle onto a persistent growable pointer array.
// It carries no database state of its own: every method takes the
// Database and the array's address explicitly, matching the fact that an
// array has no in-process identity beyond its byte address.
//
// InlineSize must be the same value used on every call against a given
// address; it is fixed at construction and is never persisted.
type Array struct {
	InlineSize int
}

// New constructs a handle for an array with the given number of inline
// element slots embedded in its header.
func New(inlineSize int) Array {
	return Array{InlineSize: inlineSize}
}

// Size returns the current logical element count of the array at addr.
// With no growable block, size is inferred as the index of the first
// tombstone (zero) inline slot, or InlineSize if none. With a growable
// block or metablock, the block header's arraySize field is
// authoritative.
func (a Array) Size(db Database, addr Address) int {
	g := db.GetRecPtr(addr)
	if g == 0 {
		for i := 0; i < a.InlineSize; i++ {
			slot := addr + Address(PtrSize) + Address(i*PtrSize)
			if db.GetRecPtr(slot) == 0 {
				return i
			}
		}
		return a.InlineSize
	}
	return blockArraySize(db, g)
}

// IsEmpty reports whether the array at addr has zero elements. It is
// equivalent to Size(db, addr) == 0 but short-circuits on the first
// inline slot in the no-block case.
func (a Array) IsEmpty(db Database, addr Address) bool {
	g := db.GetRecPtr(addr)
	if g == 0 {
		if a.InlineSize == 0 {
			return true
		}
		return db.GetRecPtr(addr+Address(PtrSize)) == 0
	}
	return blockArraySize(db, g) == 0
}

// GetCapacity returns the number of element slots currently available
// without growing: InlineSize with no growable block, or
// InlineSize + allocatedSize with one.
func (a Array) GetCapacity(db Database, addr Address) int {
	g := db.GetRecPtr(addr)
	if g == 0 {
		return a.InlineSize
	}
	return a.InlineSize + blockAllocatedSize(db, g)
}
