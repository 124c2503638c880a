package growablearray

import "github.com/pkg/errors"

// GrowableRegionSizeFor computes the geometric sizing target for a given
// desired logical size: the growable region's allocatedSize once desired
// elements must fit. It is monotonically non-decreasing in desired, and
// once desired exceeds InlineSize+MAX_BLOCK its result is always a
// positive multiple of MAX_BLOCK.
func (a Array) GrowableRegionSizeFor(db Database, desired int) int {
	need := desired - a.InlineSize
	if need <= 0 {
		return 0
	}

	maxBlock := a.MaxGrowableBlockSize(db)

	floor := need
	if a.InlineSize > floor {
		floor = a.InlineSize
	}
	p := nextPowerOfTwo(floor)
	if p <= maxBlock {
		return p
	}
	if need <= maxBlock {
		return maxBlock
	}
	return roundUp(need, maxBlock)
}

// nextPowerOfTwo returns the smallest 2^k >= n for n >= 1, and 0 for
// n <= 0.
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 0
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// roundUp rounds need up to the nearest multiple of step.
func roundUp(need, step int) int {
	return (need + step - 1) / step * step
}

// EnsureCapacity grows the array at addr, if necessary, so that desired
// elements can be stored. It resizes a single growable block in place
// while the geometric target stays within MAX_BLOCK, and promotes to (or
// extends) a metablock once the target exceeds it.
func (a Array) EnsureCapacity(db Database, addr Address, desired int) {
	maxBlock := a.MaxGrowableBlockSize(db)

	g := db.GetRecPtr(addr)
	current := 0
	if g != 0 {
		current = blockAllocatedSize(db, g)
	}

	need := desired - a.InlineSize
	if need <= current {
		return
	}

	target := a.GrowableRegionSizeFor(db, desired)

	if target <= maxBlock {
		newBlock := a.resizeBlock(db, addr, target)
		db.PutRecPtr(addr, newBlock)
		return
	}

	if target%maxBlock != 0 {
		panic(errors.Errorf("growablearray: metablock target %d is not a multiple of MAX_BLOCK %d", target, maxBlock))
	}

	alreadyMetablock := g != 0 && current > maxBlock

	var m Address
	var childCount int
	if !alreadyMetablock {
		logicalSize := a.Size(db, addr)
		c0 := a.resizeBlock(db, addr, maxBlock)

		m = db.Malloc(growableBlockHeaderBytes + maxBlock*PtrSize)
		setBlockArraySize(db, m, logicalSize)
		setBlockAllocatedSize(db, m, maxBlock)
		db.PutRecPtr(m+Address(growableBlockHeaderBytes), c0)

		// The metablock must be installed before any further
		// extension writes, so a crash mid-growth never leaves a
		// child block unreachable from addr.
		db.PutRecPtr(addr, m)
		childCount = 1
	} else {
		m = g
		childCount = current / maxBlock
	}

	desiredBlocks := target / maxBlock
	for k := childCount; k < desiredBlocks; k++ {
		child := db.Malloc(growableBlockHeaderBytes + maxBlock*PtrSize)
		setBlockAllocatedSize(db, child, maxBlock)
		db.PutRecPtr(m+Address(growableBlockHeaderBytes+k*PtrSize), child)
	}

	setBlockAllocatedSize(db, m, target)
}
