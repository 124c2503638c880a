package pagestore

import (
	"github.com/pkg/errors"

	growablearray "github.com/pdom-index/growablearray"
)

// allocHeaderBytes is a 4-byte size-class tag written immediately before
// every block Malloc returns, the way a span header precedes a heap
// object: it lets Free recover the block's class without the caller
// having to pass the size back.
const allocHeaderBytes = 4

// minClassBytes and bucketCount define bucketCount power-of-two size
// classes: 16, 32, 64, ..., 16*2^(bucketCount-1). A request rounds up to
// the smallest class that fits it, trading some internal fragmentation
// for O(1) reuse, the same tradeoff a size-classed arena makes.
const minClassBytes = 16

func classSize(idx int) int {
	return minClassBytes << uint(idx)
}

// classFor returns the bucket index of the smallest class that fits n
// bytes of payload.
func classFor(n int) (int, error) {
	for idx := 0; idx < bucketCount; idx++ {
		if classSize(idx) >= n {
			return idx, nil
		}
	}
	return 0, errors.Errorf("pagestore: allocation of %d bytes exceeds the largest size class (%d)", n, classSize(bucketCount-1))
}

// Malloc returns a zero-initialized region of at least bytes bytes, reused
// from the matching size class's free list when one is available and
// bump-allocated from the high-water mark otherwise.
func (s *Store) Malloc(bytes int) growablearray.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := classFor(bytes)
	if err != nil {
		panic(err)
	}
	size := classSize(idx)

	var raw uint32
	if root := s.freeListRoots[idx]; root != 0 {
		raw = root
		s.freeListRoots[idx] = s.getUint32(growablearray.Address(root + allocHeaderBytes))
		s.log.Debug("malloc reused free block", "class", idx, "classSize", size, "addr", raw)
	} else {
		raw = s.highWater
		s.highWater += uint32(size + allocHeaderBytes)
		s.log.Debug("malloc bumped high water", "class", idx, "classSize", size, "addr", raw, "highWater", s.highWater)
	}

	s.putUint32(growablearray.Address(raw), uint32(idx))

	payload := growablearray.Address(raw + allocHeaderBytes)
	s.zero(payload, size)
	s.liveBytes += uint64(size)

	return payload
}

// Free returns addr's backing region to its size class's free list. Freeing
// an address not returned by Malloc, or freeing it twice, corrupts that
// class's free list; this package does not defend against either, matching
// the spec's allocator contract.
func (s *Store) Free(addr growablearray.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := uint32(addr) - allocHeaderBytes
	idx := int(s.getUint32(growablearray.Address(raw)))
	if idx < 0 || idx >= bucketCount {
		s.logCorruption("free saw out-of-range size class, dropping block", "addr", addr, "class", idx)
		return
	}
	size := classSize(idx)

	s.putUint32(addr, s.freeListRoots[idx])
	s.freeListRoots[idx] = raw

	if s.liveBytes >= uint64(size) {
		s.liveBytes -= uint64(size)
	}
	s.log.Debug("free returned block to class free list", "class", idx, "addr", addr)
}

func (s *Store) zero(addr growablearray.Address, n int) {
	buf := make([]byte, n)
	if _, err := s.file.WriteAt(buf, s.fileOffset(addr)); err != nil {
		panic(errors.Wrapf(err, "pagestore: zero region at offset %d", addr))
	}
}
