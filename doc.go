// Package growablearray implements a persistent, off-heap growable pointer
// array: a variable-length sequence of fixed-width record pointers whose
// entire state lives inside a byte-addressable database managed by an
// external allocator.
//
// There is no in-process object representing an array instance. An array is
// identified solely by its database address, and every operation is a
// function of (database, address). Small arrays store their first few
// elements inline in a header to avoid any allocation; larger arrays
// graduate to a single growable block with geometric resizing, and larger
// still to a two-level metablock once a single block would not fit in one
// database chunk.
//
// Zero is a reserved tombstone value and may never be stored as a live
// element.
package growablearray
