// Package storage implements the SoA mmap'd binary store of spec §4.6:
// a columnar node index backed by a memory-mapped file, a separate
// payload file for variable-length text, a parallel in-memory hot
// buffer for recent inserts, and the Hamming/cosine scan operators that
// back the chaos track.
package storage

import "encoding/binary"

// indexMagic is the on-disk magic number of spec §4.6's IndexHeader,
// the ASCII bytes "PEDSA_V3" read as a little-endian u64.
const indexMagic uint64 = 0x33565F4153444550

// indexVersion is the current on-disk format version.
const indexVersion uint32 = 2

// headerSize is the fixed byte size of IndexHeader on disk: magic(8) +
// version(4) + nodeCount(4) + 5 region offsets(8 each).
const headerSize = 8 + 4 + 4 + 5*8

// regionAlign is the byte alignment every SoA region is padded to.
const regionAlign = 32

// IndexHeader is the fixed-size prologue of the index file, naming the
// byte offset each SoA column region starts at.
type IndexHeader struct {
	Magic              uint64
	Version            uint32
	NodeCount          uint32
	SimhashOffset      uint64
	IDOffset           uint64
	MetadataOffset     uint64
	ChaosOffset        uint64
	VectorOffset       uint64
}

func (h IndexHeader) marshal() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.Magic)
	binary.LittleEndian.PutUint32(buf[8:12], h.Version)
	binary.LittleEndian.PutUint32(buf[12:16], h.NodeCount)
	binary.LittleEndian.PutUint64(buf[16:24], h.SimhashOffset)
	binary.LittleEndian.PutUint64(buf[24:32], h.IDOffset)
	binary.LittleEndian.PutUint64(buf[32:40], h.MetadataOffset)
	binary.LittleEndian.PutUint64(buf[40:48], h.ChaosOffset)
	binary.LittleEndian.PutUint64(buf[48:56], h.VectorOffset)
	return buf
}

func unmarshalHeader(buf []byte) (IndexHeader, error) {
	var h IndexHeader
	if len(buf) < headerSize {
		return h, ErrFormatMismatch
	}
	h.Magic = binary.LittleEndian.Uint64(buf[0:8])
	if h.Magic != indexMagic {
		return h, ErrFormatMismatch
	}
	h.Version = binary.LittleEndian.Uint32(buf[8:12])
	if h.Version != indexVersion {
		return h, ErrFormatMismatch
	}
	h.NodeCount = binary.LittleEndian.Uint32(buf[12:16])
	h.SimhashOffset = binary.LittleEndian.Uint64(buf[16:24])
	h.IDOffset = binary.LittleEndian.Uint64(buf[24:32])
	h.MetadataOffset = binary.LittleEndian.Uint64(buf[32:40])
	h.ChaosOffset = binary.LittleEndian.Uint64(buf[40:48])
	h.VectorOffset = binary.LittleEndian.Uint64(buf[48:56])
	return h, nil
}

// nodeMetadataSize is the on-disk size of one NodeMetadata record:
// dataOffset(8) + dataLen(4) + nodeType(1) + padding(3).
const nodeMetadataSize = 8 + 4 + 1 + 3

// NodeType distinguishes the payload kind a NodeMetadata record points
// to, mirroring graph.NodeKind for the on-disk representation.
type NodeType uint8

const (
	NodeTypeFeature NodeType = 0
	NodeTypeEvent   NodeType = 1
)

// NodeMetadata locates one node's variable-length text in the payload
// file and records its kind.
type NodeMetadata struct {
	DataOffset uint64
	DataLen    uint32
	NodeType   NodeType
}

func marshalMetadata(recs []NodeMetadata) []byte {
	buf := make([]byte, len(recs)*nodeMetadataSize)
	for i, r := range recs {
		off := i * nodeMetadataSize
		binary.LittleEndian.PutUint64(buf[off:off+8], r.DataOffset)
		binary.LittleEndian.PutUint32(buf[off+8:off+12], r.DataLen)
		buf[off+12] = byte(r.NodeType)
	}
	return buf
}

func unmarshalMetadata(buf []byte, n int) []NodeMetadata {
	recs := make([]NodeMetadata, n)
	for i := range recs {
		off := i * nodeMetadataSize
		recs[i] = NodeMetadata{
			DataOffset: binary.LittleEndian.Uint64(buf[off : off+8]),
			DataLen:    binary.LittleEndian.Uint32(buf[off+8 : off+12]),
			NodeType:   NodeType(buf[off+12]),
		}
	}
	return recs
}

// chaosFingerprintSize is the on-disk size of one ChaosFingerprint: 8
// lanes of 8 bytes each.
const chaosFingerprintSize = 8 * 8

// vectorElemSize is the on-disk size of one f16 vector component.
const vectorElemSize = 2

// alignTo rounds offset up to the next multiple of align, where align
// is a power of two. Matches the on-disk layout of spec §4.6, where
// every SoA region starts 32-byte aligned.
func alignTo(offset uint64, align uint64) uint64 {
	return (offset + align - 1) &^ (align - 1)
}
