package fatfs

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Magic identifies a formatted fatfs image.
const Magic uint32 = 0x2345beef

// superblockSize is the packed, fixed-endian on-disk size of Superblock:
// 5 uint32 fields (magic, block_count, fat_block_count, block_size,
// root_block) plus a 16-byte volume id.
const superblockSize = 4*5 + 16

// Superblock is the packed fixed record written at block index 0.
// Fields are serialised little-endian regardless of host byte order.
type Superblock struct {
	Magic         uint32
	BlockCount    uint32
	FATBlockCount uint32
	BlockSize     uint32
	RootBlock     uint32
	VolumeID      [16]byte
}

// NewVolumeID generates a fresh random volume identifier for use when
// formatting a new image.
func NewVolumeID() [16]byte {
	var id [16]byte
	copy(id[:], uuid.New()[:])
	return id
}

// VolumeUUID returns the superblock's volume identifier as a UUID.
func (sb *Superblock) VolumeUUID() uuid.UUID {
	var id uuid.UUID
	copy(id[:], sb.VolumeID[:])
	return id
}

// fatEntrySize is the on-disk size of one FAT slot.
const fatEntrySize = 4

// FATEntryCount returns the number of FAT slots held in one block.
func (sb *Superblock) FATEntryCount() uint32 {
	return sb.BlockSize / fatEntrySize
}

// Validate checks the superblock's internal invariants.
func (sb *Superblock) Validate() Result {
	if sb.Magic != Magic {
		return ResultCorrupt
	}
	if sb.BlockSize == 0 || sb.FATBlockCount == 0 {
		return ResultCorrupt
	}
	if uint64(sb.FATBlockCount)*uint64(sb.FATEntryCount()) < uint64(sb.BlockCount) {
		return ResultCorrupt
	}
	if sb.RootBlock < 1+sb.FATBlockCount {
		return ResultCorrupt
	}
	return ResultOK
}

// Marshal packs the superblock into buf, which must be at least
// superblockSize bytes long.
func (sb *Superblock) Marshal(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], sb.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], sb.BlockCount)
	binary.LittleEndian.PutUint32(buf[8:12], sb.FATBlockCount)
	binary.LittleEndian.PutUint32(buf[12:16], sb.BlockSize)
	binary.LittleEndian.PutUint32(buf[16:20], sb.RootBlock)
	copy(buf[20:36], sb.VolumeID[:])
}

// Unmarshal unpacks a superblock from buf, which must be at least
// superblockSize bytes long.
func (sb *Superblock) Unmarshal(buf []byte) {
	sb.Magic = binary.LittleEndian.Uint32(buf[0:4])
	sb.BlockCount = binary.LittleEndian.Uint32(buf[4:8])
	sb.FATBlockCount = binary.LittleEndian.Uint32(buf[8:12])
	sb.BlockSize = binary.LittleEndian.Uint32(buf[12:16])
	sb.RootBlock = binary.LittleEndian.Uint32(buf[16:20])
	copy(sb.VolumeID[:], buf[20:36])
}
