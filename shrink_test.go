package growablearray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 0, ceilDiv(0, 4))
	assert.Equal(t, 1, ceilDiv(1, 4))
	assert.Equal(t, 1, ceilDiv(4, 4))
	assert.Equal(t, 2, ceilDiv(5, 4))
}

func TestResizeBlockGrowPreservesElements(t *testing.T) {
	db := newFakeDB(24, 0)
	a := New(2)
	addr := newArrayHeader(db, a)

	g := a.resizeBlock(db, addr, 2)
	db.PutRecPtr(addr, g)
	setBlockArraySize(db, g, 4)
	db.PutRecPtr(g+Address(growableBlockHeaderBytes), 0x33)
	db.PutRecPtr(g+Address(growableBlockHeaderBytes)+Address(PtrSize), 0x44)

	newG := a.resizeBlock(db, addr, 4)
	db.PutRecPtr(addr, newG)

	assert.Equal(t, Address(0x33), db.GetRecPtr(newG+Address(growableBlockHeaderBytes)))
	assert.Equal(t, Address(0x44), db.GetRecPtr(newG+Address(growableBlockHeaderBytes)+Address(PtrSize)))
	assert.Equal(t, 4, blockArraySize(db, newG))
	assert.Equal(t, 4, blockAllocatedSize(db, newG))
}

func TestResizeBlockSameSizeIsNoop(t *testing.T) {
	db := newFakeDB(24, 0)
	a := New(2)
	addr := newArrayHeader(db, a)

	g := a.resizeBlock(db, addr, 4)
	db.PutRecPtr(addr, g)

	same := a.resizeBlock(db, addr, 4)
	assert.Equal(t, g, same)
}

func TestRepackIfNecessaryDemotesMetablock(t *testing.T) {
	db := newFakeDB(24, 0)
	a := New(2)
	addr := newArrayHeader(db, a)
	db.PutRecPtr(addr+Address(PtrSize), 0x11)
	db.PutRecPtr(addr+Address(PtrSize)+Address(PtrSize), 0x22)

	a.EnsureCapacity(db, addr, 6)
	a.EnsureCapacity(db, addr, 7)

	g := db.GetRecPtr(addr)
	require.Greater(t, blockAllocatedSize(db, g), a.MaxGrowableBlockSize(db))

	setBlockArraySize(db, g, 1)
	a.repackIfNecessary(db, addr, 2)

	g = db.GetRecPtr(addr)
	if g != 0 {
		assert.LessOrEqual(t, blockAllocatedSize(db, g), a.MaxGrowableBlockSize(db))
	}
}

func TestRepackIfNecessaryNoBlockIsNoop(t *testing.T) {
	db := newFakeDB(24, 0)
	a := New(2)
	addr := newArrayHeader(db, a)

	a.repackIfNecessary(db, addr, 0)
	assert.Equal(t, Address(0), db.GetRecPtr(addr))
}
