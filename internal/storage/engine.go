package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/x448/float16"
	"golang.org/x/sys/unix"

	"github.com/yokoncy/pedsa/internal/chaos"
)

// Engine is the SoA mmap'd store of spec §4.6: a columnar index file
// (simhashes, ids, NodeMetadata, ChaosFingerprints, f16 vectors) mapped
// read-only, a variable-length payload file addressed by
// (dataOffset, dataLen), and a parallel in-memory hot buffer holding
// everything inserted since the last Persist.
type Engine struct {
	mu sync.RWMutex

	indexPath   string
	payloadPath string

	indexFile *os.File
	indexMmap []byte

	payloadFile *os.File
	payloadMmap []byte

	header    IndexHeader
	diskCount int

	bufSimhash  []uint64
	bufIDs      []int64
	bufText     []string
	bufNodeType []NodeType
	bufChaos    []chaos.Fingerprint
	bufVector   [][]float16.Float16

	tombstones *bitset.BitSet

	closed bool
}

// Open mmaps indexPath/payloadPath, creating empty zero-node files if
// they don't yet exist.
func Open(indexPath, payloadPath string) (*Engine, error) {
	e := &Engine{indexPath: indexPath, payloadPath: payloadPath}

	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := writeEmptyStore(indexPath, payloadPath); err != nil {
			return nil, fmt.Errorf("storage: init empty store: %w", err)
		}
	}

	if err := e.mapFiles(); err != nil {
		return nil, err
	}
	return e, nil
}

func writeEmptyStore(indexPath, payloadPath string) error {
	h := IndexHeader{
		Magic:          indexMagic,
		Version:        indexVersion,
		NodeCount:      0,
		SimhashOffset:  headerSize,
		IDOffset:       headerSize,
		MetadataOffset: headerSize,
		ChaosOffset:    headerSize,
		VectorOffset:   headerSize,
	}
	if err := os.WriteFile(indexPath, h.marshal(), 0o644); err != nil {
		return err
	}
	return os.WriteFile(payloadPath, nil, 0o644)
}

func (e *Engine) mapFiles() error {
	idxFile, err := os.OpenFile(e.indexPath, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("storage: open index file: %w", err)
	}
	idxStat, err := idxFile.Stat()
	if err != nil {
		idxFile.Close()
		return fmt.Errorf("storage: stat index file: %w", err)
	}

	var idxMmap []byte
	if idxStat.Size() > 0 {
		idxMmap, err = unix.Mmap(int(idxFile.Fd()), 0, int(idxStat.Size()), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			idxFile.Close()
			return fmt.Errorf("storage: mmap index file: %w", err)
		}
	}

	header, err := unmarshalHeader(idxMmap)
	if err != nil {
		if idxMmap != nil {
			unix.Munmap(idxMmap)
		}
		idxFile.Close()
		return err
	}

	payloadFile, err := os.OpenFile(e.payloadPath, os.O_RDWR, 0o644)
	if err != nil {
		if idxMmap != nil {
			unix.Munmap(idxMmap)
		}
		idxFile.Close()
		return fmt.Errorf("storage: open payload file: %w", err)
	}
	payloadStat, err := payloadFile.Stat()
	if err != nil {
		payloadFile.Close()
		if idxMmap != nil {
			unix.Munmap(idxMmap)
		}
		idxFile.Close()
		return fmt.Errorf("storage: stat payload file: %w", err)
	}

	var payloadMmap []byte
	if payloadStat.Size() > 0 {
		payloadMmap, err = unix.Mmap(int(payloadFile.Fd()), 0, int(payloadStat.Size()), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			payloadFile.Close()
			if idxMmap != nil {
				unix.Munmap(idxMmap)
			}
			idxFile.Close()
			return fmt.Errorf("storage: mmap payload file: %w", err)
		}
	}

	e.indexFile = idxFile
	e.indexMmap = idxMmap
	e.payloadFile = payloadFile
	e.payloadMmap = payloadMmap
	e.header = header
	e.diskCount = int(header.NodeCount)
	return nil
}

func (e *Engine) unmapFilesLocked() error {
	var firstErr error
	if e.indexMmap != nil {
		if err := unix.Munmap(e.indexMmap); err != nil && firstErr == nil {
			firstErr = err
		}
		e.indexMmap = nil
	}
	if e.payloadMmap != nil {
		if err := unix.Munmap(e.payloadMmap); err != nil && firstErr == nil {
			firstErr = err
		}
		e.payloadMmap = nil
	}
	if e.indexFile != nil {
		if err := e.indexFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.indexFile = nil
	}
	if e.payloadFile != nil {
		if err := e.payloadFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.payloadFile = nil
	}
	return firstErr
}

// Close unmaps and closes both files.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.unmapFilesLocked()
}

// NodeCount returns the total row count, disk plus hot buffer.
func (e *Engine) NodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.diskCount + len(e.bufIDs)
}

// InsertNode appends a new row to the hot buffer and returns its row
// index, in [0, NodeCount()).
func (e *Engine) InsertNode(id int64, text string, nodeType NodeType, simhash uint64, chaosFP chaos.Fingerprint, vector []float16.Float16) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.diskCount + len(e.bufIDs)
	e.bufSimhash = append(e.bufSimhash, simhash)
	e.bufIDs = append(e.bufIDs, id)
	e.bufText = append(e.bufText, text)
	e.bufNodeType = append(e.bufNodeType, nodeType)
	e.bufChaos = append(e.bufChaos, chaosFP)
	e.bufVector = append(e.bufVector, vector)
	return idx
}

// diskSimhash reads the simhash at disk row i, i < diskCount.
func (e *Engine) diskSimhash(i int) uint64 {
	off := e.header.SimhashOffset + uint64(i)*8
	return binary.LittleEndian.Uint64(e.indexMmap[off : off+8])
}

func (e *Engine) diskID(i int) int64 {
	off := e.header.IDOffset + uint64(i)*8
	return int64(binary.LittleEndian.Uint64(e.indexMmap[off : off+8]))
}

func (e *Engine) diskMetadata(i int) NodeMetadata {
	off := e.header.MetadataOffset + uint64(i)*nodeMetadataSize
	return unmarshalMetadata(e.indexMmap[off:off+nodeMetadataSize], 1)[0]
}

func (e *Engine) diskChaos(i int) chaos.Fingerprint {
	off := e.header.ChaosOffset + uint64(i)*chaosFingerprintSize
	buf := e.indexMmap[off : off+chaosFingerprintSize]
	var fp chaos.Fingerprint
	for lane := 0; lane < 8; lane++ {
		fp.Lanes[lane] = binary.LittleEndian.Uint64(buf[lane*8 : lane*8+8])
	}
	return fp
}

func (e *Engine) diskVector(i int) []float16.Float16 {
	off := e.header.VectorOffset + uint64(i)*chaos.VectorDim*vectorElemSize
	buf := e.indexMmap[off : off+chaos.VectorDim*vectorElemSize]
	vec := make([]float16.Float16, chaos.VectorDim)
	for j := 0; j < chaos.VectorDim; j++ {
		vec[j] = float16.Float16(binary.LittleEndian.Uint16(buf[j*2 : j*2+2]))
	}
	return vec
}

func (e *Engine) diskText(i int) string {
	md := e.diskMetadata(i)
	if md.DataLen == 0 {
		return ""
	}
	return string(e.payloadMmap[md.DataOffset : md.DataOffset+uint64(md.DataLen)])
}

// GetID returns the stable node id at row idx.
func (e *Engine) GetID(idx int) (int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if idx < 0 || idx >= e.diskCount+len(e.bufIDs) {
		return 0, ErrNotFound
	}
	if idx < e.diskCount {
		return e.diskID(idx), nil
	}
	return e.bufIDs[idx-e.diskCount], nil
}

// GetSimhash returns the partitioned 64-bit fingerprint at row idx.
func (e *Engine) GetSimhash(idx int) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if idx < 0 || idx >= e.diskCount+len(e.bufIDs) {
		return 0, ErrNotFound
	}
	if idx < e.diskCount {
		return e.diskSimhash(idx), nil
	}
	return e.bufSimhash[idx-e.diskCount], nil
}

// GetNodeText returns the payload text at row idx.
func (e *Engine) GetNodeText(idx int) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if idx < 0 || idx >= e.diskCount+len(e.bufIDs) {
		return "", ErrNotFound
	}
	if idx < e.diskCount {
		return e.diskText(idx), nil
	}
	return e.bufText[idx-e.diskCount], nil
}

// GetNodeType returns the node kind at row idx.
func (e *Engine) GetNodeType(idx int) (NodeType, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if idx < 0 || idx >= e.diskCount+len(e.bufIDs) {
		return 0, ErrNotFound
	}
	if idx < e.diskCount {
		return e.diskMetadata(idx).NodeType, nil
	}
	return e.bufNodeType[idx-e.diskCount], nil
}

// GetChaosFingerprint returns the 512-bit sign-quantized fingerprint at
// row idx.
func (e *Engine) GetChaosFingerprint(idx int) (chaos.Fingerprint, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if idx < 0 || idx >= e.diskCount+len(e.bufIDs) {
		return chaos.Fingerprint{}, ErrNotFound
	}
	if idx < e.diskCount {
		return e.diskChaos(idx), nil
	}
	return e.bufChaos[idx-e.diskCount], nil
}

// GetChaosVector returns the f16 dense vector at row idx.
func (e *Engine) GetChaosVector(idx int) ([]float16.Float16, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if idx < 0 || idx >= e.diskCount+len(e.bufIDs) {
		return nil, ErrNotFound
	}
	if idx < e.diskCount {
		return e.diskVector(idx), nil
	}
	return e.bufVector[idx-e.diskCount], nil
}
