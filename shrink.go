package growablearray

// resizeBlock returns a growable block of exactly newSize element slots
// carrying the array's current logical elements, allocating a
// replacement and freeing the old block when the size actually changes.
// It does not touch the array header's growableBlockAddress pointer;
// callers install the returned address themselves.
//
// Per DESIGN.md's resolution of the spec's resizeBlock Open Question,
// only element bytes are copied from the old block; arraySize and
// allocatedSize are always written explicitly into the new header
// afterward, rather than relying on a raw header-prefix copy.
func (a Array) resizeBlock(db Database, addr Address, newSize int) Address {
	g := db.GetRecPtr(addr)
	logicalSize := a.Size(db, addr)

	if g != 0 && blockAllocatedSize(db, g) == newSize {
		return g
	}

	newBlock := db.Malloc(growableBlockHeaderBytes + newSize*PtrSize)

	if g != 0 {
		oldAllocated := blockAllocatedSize(db, g)
		numToCopy := logicalSize - a.InlineSize
		if numToCopy < 0 {
			numToCopy = 0
		}
		if numToCopy > oldAllocated {
			numToCopy = oldAllocated
		}
		if numToCopy > newSize {
			numToCopy = newSize
		}
		if numToCopy > 0 {
			db.Memcpy(newBlock+Address(growableBlockHeaderBytes), g+Address(growableBlockHeaderBytes), numToCopy*PtrSize)
		}
		db.Free(g)
	}

	setBlockArraySize(db, newBlock, logicalSize)
	setBlockAllocatedSize(db, newBlock, newSize)
	return newBlock
}

// ceilDiv returns ceil(n/step) for n >= 0, step > 0.
func ceilDiv(n, step int) int {
	if n <= 0 {
		return 0
	}
	return (n + step - 1) / step
}

// repackIfNecessary demotes or shrinks the array's storage once the
// geometric target for oldSize-1 (in Remove, the size that was just
// stored; Destruct passes 0, so its target is always 0) has strictly
// dropped below the current allocation. It is a no-op whenever there is
// no growable block or the target has not shrunk. A target of 0 releases
// every growable and child block; a smaller non-zero target resizes a
// single block only once the live elements past the inline slots number
// at most a quarter of its allocation plus one.
func (a Array) repackIfNecessary(db Database, addr Address, oldSize int) {
	g := db.GetRecPtr(addr)
	if g == 0 {
		return
	}

	current := blockAllocatedSize(db, g)
	newTarget := a.GrowableRegionSizeFor(db, oldSize-1)
	if newTarget >= current {
		return
	}

	maxBlock := a.MaxGrowableBlockSize(db)

	if current > maxBlock {
		desiredBlocks := ceilDiv(newTarget, maxBlock)
		currentBlocks := current / maxBlock

		shouldShrink := currentBlocks-desiredBlocks > 1 || newTarget <= maxBlock/2+1
		if !shouldShrink {
			return
		}

		// A demote (newTarget <= maxBlock) always retains child 0 to
		// become the new single block, even when desiredBlocks itself
		// rounds down to 0; only children beyond that survivor are
		// freed here.
		keepBlocks := desiredBlocks
		if newTarget <= maxBlock && keepBlocks < 1 {
			keepBlocks = 1
		}

		for k := currentBlocks - 1; k >= keepBlocks; k-- {
			slot := g + Address(growableBlockHeaderBytes+k*PtrSize)
			child := db.GetRecPtr(slot)
			db.Free(child)
			db.PutRecPtr(slot, 0)
		}

		if newTarget > maxBlock {
			setBlockAllocatedSize(db, g, newTarget)
			return
		}

		// Demote: retain the first child as the new single block.
		c0 := db.GetRecPtr(g + Address(growableBlockHeaderBytes))
		savedArraySize := blockArraySize(db, g)
		db.Free(g)
		setBlockArraySize(db, c0, savedArraySize)
		setBlockAllocatedSize(db, c0, maxBlock)
		db.PutRecPtr(addr, c0)

		g = c0
		current = maxBlock
	}

	if newTarget == 0 {
		db.Free(g)
		db.PutRecPtr(addr, 0)
		return
	}

	desiredGrowable := a.Size(db, addr) - a.InlineSize
	if desiredGrowable < 0 {
		desiredGrowable = 0
	}
	if desiredGrowable > current/4+1 {
		return
	}

	newBlock := a.resizeBlock(db, addr, newTarget)
	db.PutRecPtr(addr, newBlock)
}
