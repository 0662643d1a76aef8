package storage

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/x448/float16"

	"github.com/yokoncy/pedsa/internal/chaos"
)

// Persist atomically rewrites both the index and payload files to
// include everything currently in the hot buffer, then clears the
// buffer and remaps. Writes go to "*.tmp" siblings first and are moved
// into place with os.Rename, so a crash mid-write never corrupts the
// previously-persisted files.
func (e *Engine) Persist() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	rawTotal := e.diskCount + len(e.bufIDs)

	simhashes := make([]uint64, 0, rawTotal)
	ids := make([]int64, 0, rawTotal)
	nodeTypes := make([]NodeType, 0, rawTotal)
	chaosFPs := make([]chaos.Fingerprint, 0, rawTotal)
	vectors := make([][]float16.Float16, 0, rawTotal)
	texts := make([]string, 0, rawTotal)

	for i := 0; i < e.diskCount; i++ {
		if e.isTombstoned(i) {
			continue
		}
		simhashes = append(simhashes, e.diskSimhash(i))
		ids = append(ids, e.diskID(i))
		nodeTypes = append(nodeTypes, e.diskMetadata(i).NodeType)
		chaosFPs = append(chaosFPs, e.diskChaos(i))
		vectors = append(vectors, e.diskVector(i))
		texts = append(texts, e.diskText(i))
	}
	for i, simhash := range e.bufSimhash {
		row := e.diskCount + i
		if e.isTombstoned(row) {
			continue
		}
		simhashes = append(simhashes, simhash)
		ids = append(ids, e.bufIDs[i])
		nodeTypes = append(nodeTypes, e.bufNodeType[i])
		chaosFPs = append(chaosFPs, e.bufChaos[i])
		vectors = append(vectors, e.bufVector[i])
		texts = append(texts, e.bufText[i])
	}

	indexBuf, payload := buildIndexAndPayload(simhashes, ids, nodeTypes, chaosFPs, vectors, texts)

	indexTmp := e.indexPath + ".tmp"
	payloadTmp := e.payloadPath + ".tmp"

	if err := writeAndSync(indexTmp, indexBuf); err != nil {
		return fmt.Errorf("storage: write index tmp: %w", err)
	}
	if err := writeAndSync(payloadTmp, payload); err != nil {
		return fmt.Errorf("storage: write payload tmp: %w", err)
	}

	if err := e.unmapFilesLocked(); err != nil {
		return fmt.Errorf("storage: unmap before rename: %w", err)
	}

	if err := os.Rename(payloadTmp, e.payloadPath); err != nil {
		return fmt.Errorf("storage: rename payload: %w", err)
	}
	if err := os.Rename(indexTmp, e.indexPath); err != nil {
		return fmt.Errorf("storage: rename index: %w", err)
	}

	if err := e.mapFiles(); err != nil {
		return fmt.Errorf("storage: remap after persist: %w", err)
	}

	e.bufSimhash = nil
	e.bufIDs = nil
	e.bufText = nil
	e.bufNodeType = nil
	e.bufChaos = nil
	e.bufVector = nil
	e.tombstones = nil

	return nil
}

// Row is one record for WriteNew's bulk first-time index build.
type Row struct {
	ID       int64
	Text     string
	NodeType NodeType
	Simhash  uint64
	ChaosFP  chaos.Fingerprint
	Vector   []float16.Float16
}

// WriteNew builds brand-new index and payload files directly from rows,
// mirroring original_source/src/storage.rs's generate_binary_dataset:
// a bulk first-time writer distinct from opening an empty store and
// growing it row-by-row through InsertNode/Persist. Any existing files
// at indexPath/payloadPath are overwritten. Intended for bulk-loading a
// dataset a caller has already assembled in memory (e.g. an offline
// ingest pass), rather than an Engine's incremental hot-buffer flow.
func WriteNew(indexPath, payloadPath string, rows []Row) error {
	simhashes := make([]uint64, len(rows))
	ids := make([]int64, len(rows))
	nodeTypes := make([]NodeType, len(rows))
	chaosFPs := make([]chaos.Fingerprint, len(rows))
	vectors := make([][]float16.Float16, len(rows))
	texts := make([]string, len(rows))
	for i, r := range rows {
		simhashes[i] = r.Simhash
		ids[i] = r.ID
		nodeTypes[i] = r.NodeType
		chaosFPs[i] = r.ChaosFP
		vectors[i] = r.Vector
		texts[i] = r.Text
	}

	indexBuf, payload := buildIndexAndPayload(simhashes, ids, nodeTypes, chaosFPs, vectors, texts)

	if err := writeAndSync(indexPath+".tmp", indexBuf); err != nil {
		return fmt.Errorf("storage: write_new index tmp: %w", err)
	}
	if err := writeAndSync(payloadPath+".tmp", payload); err != nil {
		return fmt.Errorf("storage: write_new payload tmp: %w", err)
	}
	if err := os.Rename(payloadPath+".tmp", payloadPath); err != nil {
		return fmt.Errorf("storage: write_new rename payload: %w", err)
	}
	if err := os.Rename(indexPath+".tmp", indexPath); err != nil {
		return fmt.Errorf("storage: write_new rename index: %w", err)
	}
	return nil
}

// buildIndexAndPayload lays out the SoA region offsets and marshals the
// index and payload byte slices Persist and WriteNew both write to disk.
func buildIndexAndPayload(simhashes []uint64, ids []int64, nodeTypes []NodeType, chaosFPs []chaos.Fingerprint, vectors [][]float16.Float16, texts []string) (indexBuf, payload []byte) {
	total := len(ids)
	metadata := make([]NodeMetadata, total)
	payload = make([]byte, 0)
	for i, text := range texts {
		metadata[i] = NodeMetadata{
			DataOffset: uint64(len(payload)),
			DataLen:    uint32(len(text)),
			NodeType:   nodeTypes[i],
		}
		payload = append(payload, text...)
	}

	simhashOffset := alignTo(uint64(headerSize), regionAlign)
	idOffset := alignTo(simhashOffset+uint64(total)*8, regionAlign)
	metadataOffset := alignTo(idOffset+uint64(total)*8, regionAlign)
	chaosOffset := alignTo(metadataOffset+uint64(total)*nodeMetadataSize, regionAlign)
	vectorOffset := alignTo(chaosOffset+uint64(total)*chaosFingerprintSize, regionAlign)
	indexSize := vectorOffset + uint64(total)*chaos.VectorDim*vectorElemSize

	header := IndexHeader{
		Magic:          indexMagic,
		Version:        indexVersion,
		NodeCount:      uint32(total),
		SimhashOffset:  simhashOffset,
		IDOffset:       idOffset,
		MetadataOffset: metadataOffset,
		ChaosOffset:    chaosOffset,
		VectorOffset:   vectorOffset,
	}

	indexBuf = make([]byte, indexSize)
	copy(indexBuf, header.marshal())
	for i, simhash := range simhashes {
		off := simhashOffset + uint64(i)*8
		binary.LittleEndian.PutUint64(indexBuf[off:off+8], simhash)
	}
	for i, id := range ids {
		off := idOffset + uint64(i)*8
		binary.LittleEndian.PutUint64(indexBuf[off:off+8], uint64(id))
	}
	copy(indexBuf[metadataOffset:], marshalMetadata(metadata))
	for i, fp := range chaosFPs {
		off := chaosOffset + uint64(i)*chaosFingerprintSize
		for lane := 0; lane < 8; lane++ {
			binary.LittleEndian.PutUint64(indexBuf[off+uint64(lane)*8:off+uint64(lane)*8+8], fp.Lanes[lane])
		}
	}
	for i, vec := range vectors {
		off := vectorOffset + uint64(i)*chaos.VectorDim*vectorElemSize
		for j := 0; j < chaos.VectorDim; j++ {
			var v uint16
			if j < len(vec) {
				v = uint16(vec[j])
			}
			binary.LittleEndian.PutUint16(indexBuf[off+uint64(j)*2:off+uint64(j)*2+2], v)
		}
	}

	return indexBuf, payload
}

func writeAndSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
