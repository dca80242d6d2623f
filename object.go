package fatfs

import "strings"

// rootAddress returns the address of the root directory's own entry
// record, which format writes at (root_block, 0).
func rootAddress(img *Image) Address {
	return Address{Block: img.Superblock().RootBlock, Offset: 0}
}

// readEntryAt reads the 64-byte entry record at addr.
func readEntryAt(img *Image, addr Address) (Entry, Result) {
	buf := make([]byte, EntrySize)
	n, r := chainRead(img, addr, buf)
	if r != ResultOK {
		return Entry{}, r
	}
	if n != EntrySize {
		return Entry{}, ResultCorrupt
	}
	var e Entry
	e.Unmarshal(buf)
	return e, ResultOK
}

// writeEntryAt writes e's 64-byte record at addr.
func writeEntryAt(img *Image, addr Address, e *Entry) Result {
	buf := make([]byte, EntrySize)
	e.Marshal(buf)
	n, r := chainWrite(img, addr, buf)
	if r != ResultOK {
		return r
	}
	if n != EntrySize {
		return ResultIO
	}
	return ResultOK
}

// walkChain returns the full ordered list of blocks belonging to a chain
// starting at start, in FAT-walk order (which is also logical byte
// order under this implementation's append-allocation convention). An
// empty chain (start == BlockLast) yields an empty slice.
func walkChain(img *Image, start Block) ([]Block, Result) {
	var chain []Block
	b := start
	for BlockValid(b) {
		chain = append(chain, b)
		next, r := blockNext(img, b)
		if r != ResultOK {
			return nil, r
		}
		b = next
	}
	return chain, ResultOK
}

// growChain extends the object whose 64-byte entry record lives at addr
// so that delta additional bytes are addressable past its current end.
// It implements the append-allocation convention: new blocks are
// appended after the chain's current tail, so logical offset 0 always
// stays at the chain's head.
func growChain(img *Image, addr Address, delta uint32) (uint32, Result) {
	ent, r := readEntryAt(img, addr)
	if r != ResultOK {
		return 0, r
	}
	if delta == 0 {
		return 0, ResultOK
	}
	sb := img.Superblock()
	bs := sb.BlockSize

	var tailCapacity uint32
	if ent.Size > 0 {
		rem := ent.Size % bs
		if rem != 0 {
			tailCapacity = bs - rem
		}
	}

	var tail Block = BlockLast
	if ent.StartBlock != BlockLast {
		chain, r := walkChain(img, ent.StartBlock)
		if r != ResultOK {
			return 0, r
		}
		tail = chain[len(chain)-1]
	}

	var allocated uint32
	for {
		if allocated+tailCapacity >= delta {
			allocated = delta
			break
		}
		allocated += tailCapacity
		tailCapacity = bs
		newBlock, r := blockAlloc(img, tail)
		if r != ResultOK {
			// Out-of-space: stop, keep what was allocated so far.
			break
		}
		if ent.StartBlock == BlockLast {
			ent.StartBlock = newBlock
		}
		tail = newBlock
	}

	now := nowUnix()
	ent.AccessTime = now
	ent.ModifyTime = now
	ent.Size += allocated
	if wr := writeEntryAt(img, addr, &ent); wr != ResultOK {
		return 0, wr
	}
	if allocated < delta {
		return allocated, ResultOutOfSpace
	}
	return allocated, ResultOK
}

// shrinkChain frees delta bytes from the end of the object whose entry
// record lives at addr, trimming from the tail backward.
func shrinkChain(img *Image, addr Address, delta uint32) (uint32, Result) {
	ent, r := readEntryAt(img, addr)
	if r != ResultOK {
		return 0, r
	}
	if delta > ent.Size {
		return 0, ResultInvalidArg
	}
	if delta == 0 {
		return 0, ResultOK
	}
	sb := img.Superblock()
	bs := sb.BlockSize

	chain, r := walkChain(img, ent.StartBlock)
	if r != ResultOK {
		return 0, r
	}

	tailUsed := ent.Size % bs
	if tailUsed == 0 {
		tailUsed = bs
	}

	var freed uint32
	idx := len(chain) - 1
	blockUsed := tailUsed
	for idx >= 0 {
		if freed+blockUsed > delta {
			freed = delta
			break
		}
		freed += blockUsed
		if fr := blockFree(img, chain[idx]); fr != ResultOK {
			return freed, fr
		}
		idx--
		blockUsed = bs
	}

	if idx < 0 {
		ent.StartBlock = BlockLast
	} else if idx < len(chain)-1 {
		// The block now at the tail used to point at a block we just
		// freed; terminate its chain.
		if fr := writeFATEntry(img, chain[idx], BlockLast); fr != ResultOK {
			return freed, fr
		}
	}

	now := nowUnix()
	ent.AccessTime = now
	ent.ModifyTime = now
	ent.Size -= freed
	if ent.Size == 0 {
		ent.StartBlock = BlockLast
	}
	if wr := writeEntryAt(img, addr, &ent); wr != ResultOK {
		return freed, wr
	}
	return freed, ResultOK
}

// entryAccess reads or writes size bytes at offset within the object
// whose entry record lives at addr, stopping at the object's end. Used
// by the path-level ReadAt/WriteAt in fs.go.
func entryAccess(img *Image, addr Address, offset uint32, readBuf, writeBuf []byte) (uint32, Result) {
	ent, r := readEntryAt(img, addr)
	if r != ResultOK {
		return 0, r
	}
	size := uint32(0)
	if readBuf != nil {
		size = uint32(len(readBuf))
	} else {
		size = uint32(len(writeBuf))
	}
	if size == 0 {
		return 0, ResultOK
	}
	if offset >= ent.Size {
		return 0, ResultInvalidArg
	}
	if offset+size > ent.Size {
		size = ent.Size - offset
	}

	dataAddr, r := seek(img, ent.StartBlock, offset)
	if r != ResultOK {
		return 0, r
	}

	var n uint32
	if readBuf != nil {
		n, r = chainRead(img, dataAddr, readBuf[:size])
	} else {
		n, r = chainWrite(img, dataAddr, writeBuf[:size])
	}
	if r != ResultOK {
		return n, r
	}

	now := nowUnix()
	ent.AccessTime = now
	if writeBuf != nil {
		ent.ModifyTime = now
	}
	if wr := writeEntryAt(img, addr, &ent); wr != ResultOK {
		return n, wr
	}
	return n, ResultOK
}

// resolve performs path resolution: split path by '/', walk directory
// entries from root, selecting the first entry whose name matches each
// component. The empty path and "/" both resolve to the root.
func resolve(img *Image, path string) (Address, Entry, Result) {
	addr := rootAddress(img)
	ent, r := readEntryAt(img, addr)
	if r != ResultOK {
		return Address{}, Entry{}, r
	}

	for _, comp := range splitPath(path) {
		if !ent.IsDir() {
			return Address{}, Entry{}, ResultNotDir
		}
		childAddr, childEnt, r := findChild(img, addr, ent, comp)
		if r != ResultOK {
			return Address{}, Entry{}, r
		}
		addr, ent = childAddr, childEnt
	}
	return addr, ent, ResultOK
}

// splitPath splits an absolute slash-separated path into non-empty
// components; "/" and "" both yield zero components (root).
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// findChild searches dirEnt's (whose own record lives at dirAddr) data
// area for the first record named name, returning its address and
// decoded entry.
func findChild(img *Image, dirAddr Address, dirEnt Entry, name string) (Address, Entry, Result) {
	count := dirEnt.Size / EntrySize
	for i := uint32(0); i < count; i++ {
		childAddr, r := seek(img, dirEnt.StartBlock, i*EntrySize)
		if r != ResultOK {
			return Address{}, Entry{}, r
		}
		child, r := readEntryAt(img, childAddr)
		if r != ResultOK {
			return Address{}, Entry{}, r
		}
		if child.Name == name {
			return childAddr, child, ResultOK
		}
	}
	return Address{}, Entry{}, ResultNotFound
}

// forEachEntry iterates a directory's entry records in FAT-chain order.
// Order is not lexical; callers must not assume it. Iteration stops
// early if visit returns a non-OK Result, which is propagated to the
// caller.
func forEachEntry(img *Image, dirEnt Entry, visit func(Address, Entry) Result) Result {
	count := dirEnt.Size / EntrySize
	for i := uint32(0); i < count; i++ {
		addr, r := seek(img, dirEnt.StartBlock, i*EntrySize)
		if r != ResultOK {
			return r
		}
		ent, r := readEntryAt(img, addr)
		if r != ResultOK {
			return r
		}
		if r := visit(addr, ent); r != ResultOK {
			return r
		}
	}
	return ResultOK
}

// splitParent splits an absolute path into its parent directory path and
// basename.
func splitParent(path string) (parent, name string) {
	comps := splitPath(path)
	if len(comps) == 0 {
		return "", ""
	}
	name = comps[len(comps)-1]
	parent = "/" + strings.Join(comps[:len(comps)-1], "/")
	return parent, name
}

// makeObject creates a new object named name inside the directory at
// parentPath with the given mode/flags.
func makeObject(img *Image, parentPath, name string, modeFlags uint32) (Address, Result) {
	if r := ValidateName(name); r != ResultOK {
		return Address{}, r
	}
	parentAddr, parentEnt, r := resolve(img, parentPath)
	if r != ResultOK {
		return Address{}, r
	}
	if !parentEnt.IsDir() {
		return Address{}, ResultNotDir
	}
	if _, _, r := findChild(img, parentAddr, parentEnt, name); r == ResultOK {
		return Address{}, ResultExists
	}

	oldSize := parentEnt.Size
	if _, r := growChain(img, parentAddr, EntrySize); r != ResultOK {
		return Address{}, r
	}

	now := nowUnix()
	child := Entry{
		Name:       name,
		CreateTime: now,
		ModifyTime: now,
		AccessTime: now,
		Size:       0,
		StartBlock: BlockLast,
		ModeFlags:  modeFlags,
	}

	// Re-read the parent: growChain may have changed its StartBlock if it
	// grew from empty.
	parentEnt, r = readEntryAt(img, parentAddr)
	if r != ResultOK {
		return Address{}, r
	}
	childAddr, r := seek(img, parentEnt.StartBlock, oldSize)
	if r != ResultOK {
		return Address{}, r
	}
	if r := writeEntryAt(img, childAddr, &child); r != ResultOK {
		return Address{}, r
	}
	return childAddr, ResultOK
}

// removeEntryRecord removes the record at childAddr from its parent
// directory (at parentAddr) using swap-with-last: it does not free the
// object's data chain, leaving that to the caller.
func removeEntryRecord(img *Image, parentAddr Address, parentEnt Entry, childAddr Address) Result {
	lastIndex := parentEnt.Size/EntrySize - 1
	lastAddr, r := seek(img, parentEnt.StartBlock, lastIndex*EntrySize)
	if r != ResultOK {
		return r
	}
	if lastAddr.Block != childAddr.Block || lastAddr.Offset != childAddr.Offset {
		lastEnt, r := readEntryAt(img, lastAddr)
		if r != ResultOK {
			return r
		}
		if r := writeEntryAt(img, childAddr, &lastEnt); r != ResultOK {
			return r
		}
	}
	if _, r := shrinkChain(img, parentAddr, EntrySize); r != ResultOK {
		return r
	}
	return ResultOK
}

// unlinkObject removes path's entry record from its parent and frees its
// data chain.
func unlinkObject(img *Image, path string) Result {
	parentPath, name := splitParent(path)
	if name == "" {
		return ResultInvalidArg // cannot remove root
	}
	parentAddr, parentEnt, r := resolve(img, parentPath)
	if r != ResultOK {
		return r
	}
	childAddr, childEnt, r := findChild(img, parentAddr, parentEnt, name)
	if r != ResultOK {
		return r
	}
	if childEnt.Size > 0 {
		if _, r := shrinkChain(img, childAddr, childEnt.Size); r != ResultOK {
			return r
		}
	}
	return removeEntryRecord(img, parentAddr, parentEnt, childAddr)
}
