package growablearray

// Address is a byte offset into a Database. Zero is reserved to mean
// "no address" (an empty growableBlockAddress, a null child pointer).
type Address uint32

// Database is the external byte-addressable store this package is built
// on top of. It owns allocation, pointer compression, and raw integer
// access; growablearray only ever reads and writes through it.
//
// Callers must serialize access: two concurrent mutating calls against
// overlapping arrays in the same Database produce undefined state, per
// the single-writer discipline this package assumes.
type Database interface {
	// GetRecPtr reads a PtrSize-byte compressed address at addr.
	GetRecPtr(addr Address) Address
	// PutRecPtr writes a PtrSize-byte compressed address at addr.
	PutRecPtr(addr Address, value Address)

	// GetInt reads a 4-byte signed integer at addr.
	GetInt(addr Address) int32
	// PutInt writes a 4-byte signed integer at addr.
	PutInt(addr Address, value int32)

	// Malloc allocates a zero-initialized region of the given size in
	// bytes and returns its address.
	Malloc(bytes int) Address
	// Free releases a region previously returned by Malloc.
	Free(addr Address)

	// Memcpy copies bytes bytes from src to dst. The regions may not
	// overlap.
	Memcpy(dst, src Address, bytes int)

	// ChunkSize is the size, in bytes, of one database page/chunk.
	ChunkSize() int
	// BlockHeaderSize is the per-chunk allocator overhead subtracted
	// when computing how many element slots fit in one chunk.
	BlockHeaderSize() int
}

// PtrSize is the fixed width, in bytes, of a compressed database address.
// Unlike ChunkSize and BlockHeaderSize, which vary per Database, PtrSize
// is a constant of the wire format itself.
const PtrSize = 4

// growableBlockHeaderBytes is the size of a growable block's or
// metablock's own header: a 4-byte arraySize field followed by a 4-byte
// allocatedSize field.
const growableBlockHeaderBytes = 2 * 4
