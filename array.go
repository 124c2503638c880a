package growablearray

// Add appends value to the array at addr and returns its logical index.
// value must not be the reserved tombstone 0.
func (a Array) Add(db Database, addr Address, value Address) (int, error) {
	if value == 0 {
		return 0, newInvalidArgumentError("growablearray: cannot add the reserved tombstone value 0")
	}

	i := a.Size(db, addr)
	a.EnsureCapacity(db, addr, i+1)

	slot, err := a.slotAddress(db, addr, i)
	if err != nil {
		return 0, err
	}

	// Slot write happens before the size is advanced, so a reader that
	// observes the new size also observes the new element.
	db.PutRecPtr(slot, value)

	if g := db.GetRecPtr(addr); g != 0 {
		setBlockArraySize(db, g, i+1)
	}

	return i, nil
}

// Get returns the element at logical index i. The caller is responsible
// for i being in [0, size); Get(size) is permitted and returns the
// tombstone 0, used internally during migrations. i == size is answered
// without resolving a physical slot, since an inline-only array with no
// growable block has no slot to resolve at that boundary — the global
// invariant that slots in [size, capacity) are always zero makes 0 the
// correct answer regardless of which representational state backs i.
func (a Array) Get(db Database, addr Address, i int) (Address, error) {
	size := a.Size(db, addr)
	if i < 0 || i > size {
		return 0, newIndexError("growablearray: index %d out of range [0, %d]", i, size)
	}
	if i == size {
		return 0, nil
	}

	slot, err := a.slotAddress(db, addr, i)
	if err != nil {
		return 0, err
	}
	return db.GetRecPtr(slot), nil
}

// Remove deletes the element at logical index i using swap-with-last:
// unless i is already the last index, the final element is moved into
// the removed slot and its value is returned so callers maintaining an
// external index can update it. Removing the last index returns 0.
func (a Array) Remove(db Database, addr Address, i int) (Address, error) {
	size := a.Size(db, addr)
	if i < 0 || i > size-1 {
		return 0, newIndexError("growablearray: remove index %d out of range [0, %d)", i, size)
	}

	last := size - 1

	var moved Address
	if i == last {
		slot, err := a.slotAddress(db, addr, i)
		if err != nil {
			return 0, err
		}
		db.PutRecPtr(slot, 0)
	} else {
		lastSlot, err := a.slotAddress(db, addr, last)
		if err != nil {
			return 0, err
		}
		targetSlot, err := a.slotAddress(db, addr, i)
		if err != nil {
			return 0, err
		}
		moved = db.GetRecPtr(lastSlot)
		db.PutRecPtr(targetSlot, moved)
		db.PutRecPtr(lastSlot, 0)
	}

	if g := db.GetRecPtr(addr); g != 0 {
		setBlockArraySize(db, g, size-1)
	}

	// repackIfNecessary is deliberately passed the pre-decrement size;
	// see DESIGN.md for why this hysteresis is preserved as specified.
	a.repackIfNecessary(db, addr, size)

	return moved, nil
}

// Destruct frees every growable or child block owned by the array at
// addr and clears its header's block pointer. It does not touch the
// inline slots, and it does not free addr itself — the header is owned
// by the enclosing record.
func (a Array) Destruct(db Database, addr Address) {
	a.repackIfNecessary(db, addr, 0)
}
