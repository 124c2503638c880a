// Package pagestore is a reference, file-backed implementation of the
// growablearray.Database interface: a flat byte-addressable region fronted
// by a small superblock, a size-classed free-list allocator, and advisory
// locking for single-writer durability.
package pagestore

import (
	"encoding/binary"
	"hash/crc32"
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"

	growablearray "github.com/pdom-index/growablearray"
)

const (
	magic = "PDOM"

	// Version1 is the only superblock layout this package writes or reads.
	Version1 = 1

	// bucketCount is the number of free-list size classes (alloc.go),
	// one per power-of-two byte size from 16 bytes up to 8 MiB.
	bucketCount = 20

	// superblockBytes is the fixed, CRC32C-protected region at the start
	// of the file. Everything from dataOffset onward is array/block
	// storage.
	//
	//  0 -  3: magic "PDOM"
	//  4 -  7: version
	//  8 - 11: chunkSize
	// 12 - 15: blockHeaderSize
	// 16 - 19: highWater (next never-allocated offset, relative to dataOffset)
	// 20 - 27: liveBytes (bytes currently handed out by Malloc and not yet Free'd)
	// 28 - ..: bucketCount free-list bucket roots, 4 bytes each
	//    - 4: crc32c of everything before it
	superblockBytes  = 256
	dataOffset       = superblockBytes
	freeListRootsOff = 28
	crcOff           = superblockBytes - 4
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

var _ growablearray.Database = (*Store)(nil)

// Store is a growablearray.Database backed by a single on-disk file. The
// zero Store is not usable; construct one with Create or Open.
type Store struct {
	mu   sync.Mutex
	file *os.File

	chunkSize       int
	blockHeaderSize int
	highWater       uint32
	liveBytes       uint64
	freeListRoots   [bucketCount]uint32

	log *slog.Logger
}

// Create initializes a new store file at path with the given chunk size
// and block header size (both passed straight through to the
// growablearray.Database contract). The file must not already exist.
func Create(path string, chunkSize, blockHeaderSize int) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "pagestore: create store file")
	}

	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}

	s := &Store{
		file:            f,
		chunkSize:       chunkSize,
		blockHeaderSize: blockHeaderSize,
		// Raw allocation offset 0 is reserved and never handed out, so
		// the free-list roots can use 0 as their own "empty" sentinel
		// without colliding with a genuine block at offset 0.
		highWater: allocHeaderBytes,
		log:             slog.Default().With("component", "pagestore"),
	}

	if err := s.writeSuperblock(); err != nil {
		f.Close()
		return nil, err
	}

	s.log.Info("store created", "path", path, "chunkSize", chunkSize, "blockHeaderSize", blockHeaderSize)
	return s, nil
}

// Open opens an existing store file at path, validating its superblock.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "pagestore: open store file")
	}

	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}

	s := &Store{file: f, log: slog.Default().With("component", "pagestore")}
	if err := s.readSuperblock(); err != nil {
		f.Close()
		return nil, err
	}

	s.log.Info("store opened", "path", path, "chunkSize", s.chunkSize, "highWater", s.highWater)
	return s, nil
}

// Close flushes the superblock and releases the underlying file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeSuperblockLocked(); err != nil {
		return err
	}
	return errors.Wrap(s.file.Close(), "pagestore: close store file")
}

// Sync flushes the superblock and fsyncs the underlying file, the point up
// to which a crash cannot lose committed writes.
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeSuperblockLocked(); err != nil {
		return err
	}
	return errors.Wrap(s.file.Sync(), "pagestore: fsync store file")
}

func (s *Store) writeSuperblock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeSuperblockLocked()
}

func (s *Store) writeSuperblockLocked() error {
	buf := make([]byte, superblockBytes)
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], Version1)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(s.chunkSize))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(s.blockHeaderSize))
	binary.LittleEndian.PutUint32(buf[16:20], s.highWater)
	binary.LittleEndian.PutUint64(buf[20:28], s.liveBytes)
	for i, root := range s.freeListRoots {
		off := freeListRootsOff + i*4
		binary.LittleEndian.PutUint32(buf[off:off+4], root)
	}
	binary.LittleEndian.PutUint32(buf[crcOff:crcOff+4], crc32.Checksum(buf[:crcOff], crcTable))

	if _, err := s.file.WriteAt(buf, 0); err != nil {
		return errors.Wrap(err, "pagestore: write superblock")
	}
	return nil
}

func (s *Store) readSuperblock() error {
	buf := make([]byte, superblockBytes)
	if _, err := s.file.ReadAt(buf, 0); err != nil {
		return errors.Wrap(err, "pagestore: read superblock")
	}
	if string(buf[0:4]) != magic {
		return errors.Errorf("pagestore: bad magic %q, not a store file", buf[0:4])
	}
	want := binary.LittleEndian.Uint32(buf[crcOff : crcOff+4])
	got := crc32.Checksum(buf[:crcOff], crcTable)
	if want != got {
		s.logCorruption("superblock checksum mismatch", "want", want, "got", got)
		return errors.Errorf("pagestore: superblock checksum mismatch (want %08x, got %08x)", want, got)
	}

	s.chunkSize = int(binary.LittleEndian.Uint32(buf[8:12]))
	s.blockHeaderSize = int(binary.LittleEndian.Uint32(buf[12:16]))
	s.highWater = binary.LittleEndian.Uint32(buf[16:20])
	s.liveBytes = binary.LittleEndian.Uint64(buf[20:28])
	for i := range s.freeListRoots {
		off := freeListRootsOff + i*4
		s.freeListRoots[i] = binary.LittleEndian.Uint32(buf[off : off+4])
	}
	return nil
}

// Store adds dataOffset to every growablearray.Address it's given so that
// address 0 always means "the tombstone", never a real location inside the
// superblock.

func (s *Store) fileOffset(addr growablearray.Address) int64 {
	return int64(dataOffset) + int64(addr)
}

// GetRecPtr reads a 4-byte address-valued field.
func (s *Store) GetRecPtr(addr growablearray.Address) growablearray.Address {
	return growablearray.Address(s.getUint32(addr))
}

// PutRecPtr writes a 4-byte address-valued field.
func (s *Store) PutRecPtr(addr growablearray.Address, value growablearray.Address) {
	s.putUint32(addr, uint32(value))
}

// GetInt reads a 4-byte signed integer field.
func (s *Store) GetInt(addr growablearray.Address) int32 {
	return int32(s.getUint32(addr))
}

// PutInt writes a 4-byte signed integer field.
func (s *Store) PutInt(addr growablearray.Address, value int32) {
	s.putUint32(addr, uint32(value))
}

func (s *Store) getUint32(addr growablearray.Address) uint32 {
	var buf [4]byte
	if _, err := s.file.ReadAt(buf[:], s.fileOffset(addr)); err != nil {
		panic(errors.Wrapf(err, "pagestore: read at offset %d", addr))
	}
	return binary.LittleEndian.Uint32(buf[:])
}

func (s *Store) putUint32(addr growablearray.Address, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	if _, err := s.file.WriteAt(buf[:], s.fileOffset(addr)); err != nil {
		panic(errors.Wrapf(err, "pagestore: write at offset %d", addr))
	}
}

// Memcpy copies bytes bytes from src to dst within the data region.
func (s *Store) Memcpy(dst, src growablearray.Address, bytes int) {
	buf := make([]byte, bytes)
	if _, err := s.file.ReadAt(buf, s.fileOffset(src)); err != nil {
		panic(errors.Wrapf(err, "pagestore: memcpy read at offset %d", src))
	}
	if _, err := s.file.WriteAt(buf, s.fileOffset(dst)); err != nil {
		panic(errors.Wrapf(err, "pagestore: memcpy write at offset %d", dst))
	}
}

// ChunkSize returns the store's fixed allocation chunk size.
func (s *Store) ChunkSize() int { return s.chunkSize }

// BlockHeaderSize returns the store's fixed per-chunk allocator overhead,
// as given to Create.
func (s *Store) BlockHeaderSize() int { return s.blockHeaderSize }
