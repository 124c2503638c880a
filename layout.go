package growablearray

// ArrayHeaderBytes returns the number of header bytes an array with this
// inline size occupies at its address: one PtrSize-byte
// growableBlockAddress slot followed by InlineSize element slots.
func (a Array) ArrayHeaderBytes() int {
	return PtrSize + a.InlineSize*PtrSize
}

// GetRecordSize returns the static header size used by the enclosing
// schema to lay out the containing record. It is equivalent to
// ArrayHeaderBytes and takes no database, matching the fact that it
// depends only on the array's fixed inlineSize and the wire-format
// constant PtrSize.
func (a Array) GetRecordSize() int {
	return a.ArrayHeaderBytes()
}

// MaxGrowableBlockSize returns MAX_BLOCK for db: the largest number of
// element slots that fit in one database chunk once the chunk's own
// allocator overhead and the growable block header are subtracted.
func (a Array) MaxGrowableBlockSize(db Database) int {
	return (db.ChunkSize() - db.BlockHeaderSize() - growableBlockHeaderBytes) / PtrSize
}

func blockArraySize(db Database, g Address) int {
	return int(db.GetInt(g))
}

func blockAllocatedSize(db Database, g Address) int {
	return int(db.GetInt(g + 4))
}

func setBlockArraySize(db Database, g Address, v int) {
	db.PutInt(g, int32(v))
}

func setBlockAllocatedSize(db Database, g Address, v int) {
	db.PutInt(g+4, int32(v))
}

// slotAddress resolves the physical address of logical index i within
// the array at addr, per the address arithmetic in the inline, single
// block, and metablock cases. i must be in [0, size]; i == size is the
// next append position and is a valid request. Any other i raises
// IndexError, as does i == size == InlineSize while no growable block
// exists, since there is no slot to resolve.
func (a Array) slotAddress(db Database, addr Address, i int) (Address, error) {
	size := a.Size(db, addr)
	if i < 0 || i > size {
		return 0, newIndexError("growablearray: index %d out of range [0, %d]", i, size)
	}

	if i < a.InlineSize {
		return addr + Address(PtrSize) + Address(i*PtrSize), nil
	}

	j := i - a.InlineSize
	g := db.GetRecPtr(addr)
	if g == 0 {
		// Unreachable from Add (EnsureCapacity always runs first) or
		// Get (which answers i == size itself without calling here).
		// Kept as a backstop against a future caller passing i ==
		// size == InlineSize directly.
		return 0, newIndexError("growablearray: index %d has no backing block yet", i)
	}
	maxBlock := a.MaxGrowableBlockSize(db)
	allocated := blockAllocatedSize(db, g)

	if allocated <= maxBlock {
		return g + Address(growableBlockHeaderBytes) + Address(j*PtrSize), nil
	}

	block := j / maxBlock
	offset := j % maxBlock
	child := db.GetRecPtr(g + Address(growableBlockHeaderBytes) + Address(block*PtrSize))
	return child + Address(growableBlockHeaderBytes) + Address(offset*PtrSize), nil
}
