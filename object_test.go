package fatfs

import "testing"

func TestMakeObjectAndResolve(t *testing.T) {
	img := newTestImage(64, 256)

	if _, r := makeObject(img, "/", "a.txt", ModeFile); r != ResultOK {
		t.Fatalf("makeObject: %v", r)
	}
	_, ent, r := resolve(img, "/a.txt")
	if r != ResultOK {
		t.Fatalf("resolve: %v", r)
	}
	if ent.Name != "a.txt" || !ent.IsFile() {
		t.Fatalf("got %+v, want file named a.txt", ent)
	}
}

func TestMakeObjectDuplicateNameFails(t *testing.T) {
	img := newTestImage(64, 256)

	if _, r := makeObject(img, "/", "dup", ModeFile); r != ResultOK {
		t.Fatalf("makeObject: %v", r)
	}
	if _, r := makeObject(img, "/", "dup", ModeDir); r != ResultExists {
		t.Fatalf("expected ResultExists, got %v", r)
	}
}

func TestMakeObjectRejectsBadName(t *testing.T) {
	img := newTestImage(64, 256)

	if _, r := makeObject(img, "/", "has/slash", ModeFile); r != ResultInvalidName {
		t.Fatalf("expected ResultInvalidName, got %v", r)
	}
}

func TestMakeObjectNestedDirectories(t *testing.T) {
	img := newTestImage(64, 256)

	if _, r := makeObject(img, "/", "sub", ModeDir); r != ResultOK {
		t.Fatalf("makeObject sub: %v", r)
	}
	if _, r := makeObject(img, "/sub", "nested.txt", ModeFile); r != ResultOK {
		t.Fatalf("makeObject nested: %v", r)
	}
	_, ent, r := resolve(img, "/sub/nested.txt")
	if r != ResultOK {
		t.Fatalf("resolve nested: %v", r)
	}
	if ent.Name != "nested.txt" {
		t.Fatalf("got %q", ent.Name)
	}
}

func TestResolveMissingPathFails(t *testing.T) {
	img := newTestImage(64, 256)
	if _, _, r := resolve(img, "/missing"); r != ResultNotFound {
		t.Fatalf("expected ResultNotFound, got %v", r)
	}
}

func TestResolveThroughNonDirectoryFails(t *testing.T) {
	img := newTestImage(64, 256)
	if _, r := makeObject(img, "/", "f", ModeFile); r != ResultOK {
		t.Fatalf("makeObject: %v", r)
	}
	if _, _, r := resolve(img, "/f/child"); r != ResultNotDir {
		t.Fatalf("expected ResultNotDir, got %v", r)
	}
}

func TestGrowChainAcrossMultipleBlocks(t *testing.T) {
	img := newTestImage(64, 64)
	addr, r := makeObject(img, "/", "big", ModeFile)
	if r != ResultOK {
		t.Fatalf("makeObject: %v", r)
	}
	allocated, r := growChain(img, addr, 200) // spans 4 blocks of 64 bytes
	if r != ResultOK {
		t.Fatalf("growChain: %v", r)
	}
	if allocated != 200 {
		t.Fatalf("allocated = %d, want 200", allocated)
	}
	ent, r := readEntryAt(img, addr)
	if r != ResultOK {
		t.Fatalf("readEntryAt: %v", r)
	}
	if ent.Size != 200 {
		t.Fatalf("entry size = %d, want 200", ent.Size)
	}
	chain, r := walkChain(img, ent.StartBlock)
	if r != ResultOK {
		t.Fatalf("walkChain: %v", r)
	}
	if len(chain) != 4 {
		t.Fatalf("chain length = %d, want 4", len(chain))
	}
}

func TestShrinkChainTrimsTail(t *testing.T) {
	img := newTestImage(64, 64)
	addr, r := makeObject(img, "/", "big", ModeFile)
	if r != ResultOK {
		t.Fatalf("makeObject: %v", r)
	}
	if _, r := growChain(img, addr, 200); r != ResultOK {
		t.Fatalf("growChain: %v", r)
	}
	freed, r := shrinkChain(img, addr, 100)
	if r != ResultOK {
		t.Fatalf("shrinkChain: %v", r)
	}
	if freed != 100 {
		t.Fatalf("freed = %d, want 100", freed)
	}
	ent, r := readEntryAt(img, addr)
	if r != ResultOK {
		t.Fatalf("readEntryAt: %v", r)
	}
	if ent.Size != 100 {
		t.Fatalf("entry size = %d, want 100", ent.Size)
	}
	chain, r := walkChain(img, ent.StartBlock)
	if r != ResultOK {
		t.Fatalf("walkChain: %v", r)
	}
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
}

func TestShrinkChainToZeroResetsStartBlock(t *testing.T) {
	img := newTestImage(64, 64)
	addr, r := makeObject(img, "/", "big", ModeFile)
	if r != ResultOK {
		t.Fatalf("makeObject: %v", r)
	}
	if _, r := growChain(img, addr, 50); r != ResultOK {
		t.Fatalf("growChain: %v", r)
	}
	if _, r := shrinkChain(img, addr, 50); r != ResultOK {
		t.Fatalf("shrinkChain: %v", r)
	}
	ent, r := readEntryAt(img, addr)
	if r != ResultOK {
		t.Fatalf("readEntryAt: %v", r)
	}
	if ent.Size != 0 || ent.StartBlock != BlockLast {
		t.Fatalf("got size=%d startBlock=%v, want 0/BlockLast", ent.Size, ent.StartBlock)
	}
}

func TestUnlinkSwapDelete(t *testing.T) {
	img := newTestImage(64, 256)
	for _, name := range []string{"a", "b", "c"} {
		if _, r := makeObject(img, "/", name, ModeFile); r != ResultOK {
			t.Fatalf("makeObject %s: %v", name, r)
		}
	}

	if r := unlinkObject(img, "/b"); r != ResultOK {
		t.Fatalf("unlinkObject: %v", r)
	}

	if _, _, r := resolve(img, "/b"); r != ResultNotFound {
		t.Fatalf("expected /b to be gone, got %v", r)
	}
	for _, name := range []string{"/a", "/c"} {
		if _, _, r := resolve(img, name); r != ResultOK {
			t.Fatalf("resolve %s: %v", name, r)
		}
	}

	_, rootEnt, r := resolve(img, "/")
	if r != ResultOK {
		t.Fatalf("resolve root: %v", r)
	}
	if rootEnt.Size != 2*EntrySize {
		t.Fatalf("root size = %d, want %d", rootEnt.Size, 2*EntrySize)
	}
}
