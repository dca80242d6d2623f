package fatfs

import (
	"bytes"
	"testing"
)

func newTestCore(blockCount, blockSize uint32) *Core {
	return NewCore(newTestImage(blockCount, blockSize))
}

func TestCoreMkdirCreateGetAttr(t *testing.T) {
	c := newTestCore(64, 256)

	if r := c.Mkdir("/docs"); r != ResultOK {
		t.Fatalf("Mkdir: %v", r)
	}
	if r := c.Create("/docs/readme.txt"); r != ResultOK {
		t.Fatalf("Create: %v", r)
	}

	st, r := c.GetAttr("/docs")
	if r != ResultOK || !st.IsDir {
		t.Fatalf("GetAttr(/docs) = %+v, %v", st, r)
	}
	st, r = c.GetAttr("/docs/readme.txt")
	if r != ResultOK || st.IsDir {
		t.Fatalf("GetAttr(/docs/readme.txt) = %+v, %v", st, r)
	}
}

func TestCoreWriteReadRoundTrip(t *testing.T) {
	c := newTestCore(64, 64)
	if r := c.Create("/f"); r != ResultOK {
		t.Fatalf("Create: %v", r)
	}

	data := bytes.Repeat([]byte("fatfs"), 40) // spans several 64-byte blocks
	n, r := c.WriteAt("/f", data, 0)
	if r != ResultOK || n != uint32(len(data)) {
		t.Fatalf("WriteAt: n=%d r=%v", n, r)
	}

	buf := make([]byte, len(data))
	n, r = c.ReadAt("/f", buf, 0)
	if r != ResultOK || n != uint32(len(data)) {
		t.Fatalf("ReadAt: n=%d r=%v", n, r)
	}
	if !bytes.Equal(buf, data) {
		t.Fatalf("round trip mismatch")
	}

	st, r := c.GetAttr("/f")
	if r != ResultOK || st.Size != uint32(len(data)) {
		t.Fatalf("GetAttr size = %+v, %v", st, r)
	}
}

func TestCoreWriteAtOffsetGrowsFile(t *testing.T) {
	c := newTestCore(64, 64)
	if r := c.Create("/f"); r != ResultOK {
		t.Fatalf("Create: %v", r)
	}
	if _, r := c.WriteAt("/f", []byte("abc"), 0); r != ResultOK {
		t.Fatalf("WriteAt: %v", r)
	}
	if _, r := c.WriteAt("/f", []byte("xyz"), 100); r != ResultOK {
		t.Fatalf("WriteAt at offset: %v", r)
	}
	st, r := c.GetAttr("/f")
	if r != ResultOK || st.Size != 103 {
		t.Fatalf("GetAttr = %+v, %v, want size 103", st, r)
	}
}

func TestCoreReadDirListsChildren(t *testing.T) {
	c := newTestCore(64, 256)
	for _, name := range []string{"one", "two", "three"} {
		if r := c.Create("/" + name); r != ResultOK {
			t.Fatalf("Create %s: %v", name, r)
		}
	}
	entries, r := c.ReadDir("/")
	if r != ResultOK {
		t.Fatalf("ReadDir: %v", r)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	seen := map[string]bool{}
	for _, e := range entries {
		seen[e.Name] = true
	}
	for _, name := range []string{"one", "two", "three"} {
		if !seen[name] {
			t.Errorf("missing entry %q", name)
		}
	}
}

func TestCoreRemoveFileAndNonEmptyDir(t *testing.T) {
	c := newTestCore(64, 256)
	if r := c.Mkdir("/d"); r != ResultOK {
		t.Fatalf("Mkdir: %v", r)
	}
	if r := c.Create("/d/f"); r != ResultOK {
		t.Fatalf("Create: %v", r)
	}
	if r := c.Remove("/d"); r != ResultNotEmpty {
		t.Fatalf("expected ResultNotEmpty, got %v", r)
	}
	if r := c.Remove("/d/f"); r != ResultOK {
		t.Fatalf("Remove file: %v", r)
	}
	if r := c.Remove("/d"); r != ResultOK {
		t.Fatalf("Remove empty dir: %v", r)
	}
	if _, _, r := resolve(c.img, "/d"); r != ResultNotFound {
		t.Fatalf("expected /d gone, got %v", r)
	}
}

func TestCoreTruncateGrowsAndShrinks(t *testing.T) {
	c := newTestCore(64, 64)
	if r := c.Create("/f"); r != ResultOK {
		t.Fatalf("Create: %v", r)
	}
	if r := c.Truncate("/f", 150); r != ResultOK {
		t.Fatalf("Truncate grow: %v", r)
	}
	st, r := c.GetAttr("/f")
	if r != ResultOK || st.Size != 150 {
		t.Fatalf("GetAttr = %+v, %v, want size 150", st, r)
	}
	if r := c.Truncate("/f", 10); r != ResultOK {
		t.Fatalf("Truncate shrink: %v", r)
	}
	st, r = c.GetAttr("/f")
	if r != ResultOK || st.Size != 10 {
		t.Fatalf("GetAttr = %+v, %v, want size 10", st, r)
	}
}

func TestCoreRenameWithinSameDirectory(t *testing.T) {
	c := newTestCore(64, 256)
	if r := c.Create("/old.txt"); r != ResultOK {
		t.Fatalf("Create: %v", r)
	}
	if _, r := c.WriteAt("/old.txt", []byte("payload"), 0); r != ResultOK {
		t.Fatalf("WriteAt: %v", r)
	}
	if r := c.Rename("/old.txt", "/new.txt"); r != ResultOK {
		t.Fatalf("Rename: %v", r)
	}
	if _, _, r := resolve(c.img, "/old.txt"); r != ResultNotFound {
		t.Fatalf("expected /old.txt gone, got %v", r)
	}
	buf := make([]byte, len("payload"))
	if _, r := c.ReadAt("/new.txt", buf, 0); r != ResultOK {
		t.Fatalf("ReadAt renamed file: %v", r)
	}
	if string(buf) != "payload" {
		t.Fatalf("got %q, want payload", buf)
	}
}

func TestCoreRenameAcrossDirectories(t *testing.T) {
	c := newTestCore(64, 256)
	if r := c.Mkdir("/a"); r != ResultOK {
		t.Fatalf("Mkdir /a: %v", r)
	}
	if r := c.Mkdir("/b"); r != ResultOK {
		t.Fatalf("Mkdir /b: %v", r)
	}
	if r := c.Create("/a/f"); r != ResultOK {
		t.Fatalf("Create: %v", r)
	}
	if r := c.Rename("/a/f", "/b/f"); r != ResultOK {
		t.Fatalf("Rename across dirs: %v", r)
	}
	if _, _, r := resolve(c.img, "/a/f"); r != ResultNotFound {
		t.Fatalf("expected /a/f gone, got %v", r)
	}
	if _, _, r := resolve(c.img, "/b/f"); r != ResultOK {
		t.Fatalf("expected /b/f to exist, got %v", r)
	}
}

func TestCoreRenameIntoOwnSubtreeFails(t *testing.T) {
	c := newTestCore(64, 256)
	if r := c.Mkdir("/a"); r != ResultOK {
		t.Fatalf("Mkdir: %v", r)
	}
	if r := c.Rename("/a", "/a/sub"); r == ResultOK {
		t.Fatalf("expected Rename into own subtree to fail")
	}
}

func TestCoreChmodPreservesKindBits(t *testing.T) {
	c := newTestCore(64, 256)
	if r := c.Create("/f"); r != ResultOK {
		t.Fatalf("Create: %v", r)
	}
	if r := c.Chmod("/f", 0o644); r != ResultOK {
		t.Fatalf("Chmod: %v", r)
	}
	st, r := c.GetAttr("/f")
	if r != ResultOK {
		t.Fatalf("GetAttr: %v", r)
	}
	if st.IsDir || st.ModeFlags&modeTypeMask != ModeFile {
		t.Fatalf("chmod changed the kind bits: %#x", st.ModeFlags)
	}
	if st.ModeFlags&^modeTypeMask != 0o644 {
		t.Fatalf("permission bits = %#o, want %#o", st.ModeFlags&^modeTypeMask, 0o644)
	}
}
