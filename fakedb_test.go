package growablearray

import "encoding/binary"

// fakeDB is an in-memory Database used by the tests in this package. It is
// a bump allocator: Free does not reclaim space, which is fine for tests
// that only ever grow a handful of small fixtures. chunkSize and
// blockHeaderSize are tunable so tests can land on an exact small
// MAX_BLOCK, the way spec.md's own worked examples do.
type fakeDB struct {
	mem             []byte
	chunkSize       int
	blockHeaderSize int
}

func newFakeDB(chunkSize, blockHeaderSize int) *fakeDB {
	// Address 0 is the reserved null/tombstone value; reserve it so no
	// real allocation ever lands there.
	return &fakeDB{mem: make([]byte, 4), chunkSize: chunkSize, blockHeaderSize: blockHeaderSize}
}

func (d *fakeDB) ensure(addr Address, n int) {
	end := int(addr) + n
	if end > len(d.mem) {
		d.mem = append(d.mem, make([]byte, end-len(d.mem))...)
	}
}

func (d *fakeDB) GetRecPtr(addr Address) Address {
	d.ensure(addr, 4)
	return Address(binary.LittleEndian.Uint32(d.mem[addr:]))
}

func (d *fakeDB) PutRecPtr(addr Address, value Address) {
	d.ensure(addr, 4)
	binary.LittleEndian.PutUint32(d.mem[addr:], uint32(value))
}

func (d *fakeDB) GetInt(addr Address) int32 {
	d.ensure(addr, 4)
	return int32(binary.LittleEndian.Uint32(d.mem[addr:]))
}

func (d *fakeDB) PutInt(addr Address, value int32) {
	d.ensure(addr, 4)
	binary.LittleEndian.PutUint32(d.mem[addr:], uint32(value))
}

func (d *fakeDB) Malloc(bytes int) Address {
	addr := Address(len(d.mem))
	d.mem = append(d.mem, make([]byte, bytes)...)
	return addr
}

// Free is a no-op: this fixture never reuses freed space, and the spec's
// allocator contract (§6) doesn't require detecting double-free.
func (d *fakeDB) Free(addr Address) {}

func (d *fakeDB) Memcpy(dst, src Address, bytes int) {
	d.ensure(dst, bytes)
	d.ensure(src, bytes)
	copy(d.mem[dst:int(dst)+bytes], d.mem[src:int(src)+bytes])
}

func (d *fakeDB) ChunkSize() int { return d.chunkSize }

func (d *fakeDB) BlockHeaderSize() int { return d.blockHeaderSize }

// newArrayHeader allocates a zeroed array header (growableBlockAddress
// slot plus inlineSize element slots) for a.
func newArrayHeader(db *fakeDB, a Array) Address {
	return db.Malloc(a.ArrayHeaderBytes())
}
