package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/yokoncy/pedsa/internal/chaos"
	"github.com/yokoncy/pedsa/internal/fingerprint"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := Open(filepath.Join(dir, "index.bin"), filepath.Join(dir, "payload.bin"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func vecOf(values ...float32) []float16.Float16 {
	vec := make([]float16.Float16, chaos.VectorDim)
	for i, v := range values {
		vec[i] = float16.Fromfloat32(v)
	}
	return vec
}

func TestOpenCreatesEmptyStore(t *testing.T) {
	e := openTestEngine(t)
	assert.Equal(t, 0, e.NodeCount())
}

func TestInsertNodeBufferAccessors(t *testing.T) {
	e := openTestEngine(t)

	var fp chaos.Fingerprint
	fp.Lanes[0] = 0xF0F0
	idx := e.InsertNode(42, "hello", NodeTypeEvent, 0xABCD, fp, vecOf(1, 2, 3))

	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, e.NodeCount())

	id, err := e.GetID(idx)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	simhash, err := e.GetSimhash(idx)
	require.NoError(t, err)
	assert.EqualValues(t, 0xABCD, simhash)

	text, err := e.GetNodeText(idx)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	nodeType, err := e.GetNodeType(idx)
	require.NoError(t, err)
	assert.Equal(t, NodeTypeEvent, nodeType)

	gotFP, err := e.GetChaosFingerprint(idx)
	require.NoError(t, err)
	assert.Equal(t, fp, gotFP)

	vec, err := e.GetChaosVector(idx)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vec[0].Float32(), 0.01)
}

func TestGetMissingRowReturnsNotFound(t *testing.T) {
	e := openTestEngine(t)
	_, err := e.GetID(0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistRoundTrip(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.bin")
	payloadPath := filepath.Join(dir, "payload.bin")

	e, err := Open(indexPath, payloadPath)
	require.NoError(t, err)

	var fp1, fp2 chaos.Fingerprint
	fp1.Lanes[0] = 1
	fp2.Lanes[7] = 0xFFFFFFFFFFFFFFFF

	e.InsertNode(1, "first event", NodeTypeEvent, 0x1111, fp1, vecOf(0.5, -0.5))
	e.InsertNode(2, "second, longer event text", NodeTypeFeature, 0x2222, fp2, vecOf(-1, 1, 0.25))

	require.NoError(t, e.Persist())
	assert.Equal(t, 2, e.NodeCount())
	require.NoError(t, e.Close())

	reopened, err := Open(indexPath, payloadPath)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.NodeCount())
	assert.Equal(t, 2, reopened.diskCount)
	assert.Empty(t, reopened.bufIDs)

	id0, err := reopened.GetID(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, id0)

	text1, err := reopened.GetNodeText(1)
	require.NoError(t, err)
	assert.Equal(t, "second, longer event text", text1)

	gotFP1, err := reopened.GetChaosFingerprint(0)
	require.NoError(t, err)
	assert.Equal(t, fp1, gotFP1)

	gotFP2, err := reopened.GetChaosFingerprint(1)
	require.NoError(t, err)
	assert.Equal(t, fp2, gotFP2)

	nodeType1, err := reopened.GetNodeType(1)
	require.NoError(t, err)
	assert.Equal(t, NodeTypeFeature, nodeType1)

	vec0, err := reopened.GetChaosVector(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, vec0[0].Float32(), 0.01)
}

func TestWriteNewBuildsLoadableStore(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.bin")
	payloadPath := filepath.Join(dir, "payload.bin")

	var fp chaos.Fingerprint
	fp.Lanes[3] = 0xABCD

	rows := []Row{
		{ID: 1, Text: "bulk-loaded feature", NodeType: NodeTypeFeature, Simhash: 0x1111},
		{ID: 2, Text: "bulk-loaded event", NodeType: NodeTypeEvent, Simhash: 0x2222, ChaosFP: fp, Vector: vecOf(0.25)},
	}

	require.NoError(t, WriteNew(indexPath, payloadPath, rows))

	e, err := Open(indexPath, payloadPath)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 2, e.NodeCount())

	id1, err := e.GetID(1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, id1)

	text0, err := e.GetNodeText(0)
	require.NoError(t, err)
	assert.Equal(t, "bulk-loaded feature", text0)

	gotFP, err := e.GetChaosFingerprint(1)
	require.NoError(t, err)
	assert.Equal(t, fp, gotFP)
}

func TestPersistThenInsertMoreKeepsBothGenerations(t *testing.T) {
	e := openTestEngine(t)

	var fp chaos.Fingerprint
	e.InsertNode(1, "a", NodeTypeEvent, 1, fp, vecOf(1))
	require.NoError(t, e.Persist())

	e.InsertNode(2, "b", NodeTypeEvent, 2, fp, vecOf(1))
	assert.Equal(t, 2, e.NodeCount())
	assert.Equal(t, 1, e.diskCount)

	id1, err := e.GetID(1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, id1)

	require.NoError(t, e.Persist())
	assert.Equal(t, 2, e.diskCount)
	assert.Empty(t, e.bufIDs)
}

func TestScanSIMDFindsExactMatch(t *testing.T) {
	e := openTestEngine(t)

	var fp chaos.Fingerprint
	e.InsertNode(1, "a", NodeTypeEvent, 0x00000000_AAAA0000, fp, nil)
	e.InsertNode(2, "b", NodeTypeEvent, 0x00000000_12340000, fp, nil)
	e.InsertNode(3, "c", NodeTypeEvent, 0x00000000_FFFF0000, fp, nil)

	mask := uint64(fingerprint.SemanticMask) | uint64(fingerprint.TemporalMask)
	idx, sim, found := e.ScanSIMD(0x00000000_12340000, mask)
	require.True(t, found)
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestScanSIMDFilteredRestrictsCandidates(t *testing.T) {
	e := openTestEngine(t)

	var fp chaos.Fingerprint
	e.InsertNode(1, "a", NodeTypeEvent, 0x1111, fp, nil)
	e.InsertNode(2, "b", NodeTypeEvent, 0x1111, fp, nil)

	mask := uint64(fingerprint.SemanticMask)
	idx, _, found := e.ScanSIMDFiltered(0x1111, mask, func(i int) bool { return i == 1 })
	require.True(t, found)
	assert.Equal(t, 1, idx)
}

func TestScanChaosParallelOrdersAscendingByDistance(t *testing.T) {
	e := openTestEngine(t)

	var query, near, mid, far chaos.Fingerprint
	query.Lanes[0] = 0b1111_0000

	near = query
	near.Lanes[0] ^= 0b0001_0000 // 1 bit away

	mid = query
	mid.Lanes[0] ^= 0b0011_0000 // 2 bits away

	far.Lanes[0] = ^query.Lanes[0] // maximally far

	e.InsertNode(100, "near", NodeTypeEvent, 0, near, nil)
	e.InsertNode(200, "mid", NodeTypeEvent, 0, mid, nil)
	e.InsertNode(300, "far", NodeTypeEvent, 0, far, nil)

	results := e.ScanChaosParallel(query, 32, 10, 2)
	require.Len(t, results, 2)
	assert.EqualValues(t, 100, results[0].ID)
	assert.Equal(t, 1, results[0].Distance)
	assert.EqualValues(t, 200, results[1].ID)
	assert.Equal(t, 2, results[1].Distance)
}

func TestScanChaosTopNTruncates(t *testing.T) {
	e := openTestEngine(t)
	var query chaos.Fingerprint

	for i := int64(0); i < 20; i++ {
		fp := query
		fp.Lanes[1] = uint64(i + 1)
		e.InsertNode(i, "x", NodeTypeEvent, 0, fp, nil)
	}

	results := e.ScanChaosParallel(query, 64, 5, 4)
	assert.Len(t, results, 5)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
}

func TestScanVectorTopKRanksByCosine(t *testing.T) {
	e := openTestEngine(t)

	e.InsertNode(1, "orthogonal", NodeTypeEvent, 0, chaos.Fingerprint{}, vecOf(0, 1))
	e.InsertNode(2, "identical", NodeTypeEvent, 0, chaos.Fingerprint{}, vecOf(1, 0))
	e.InsertNode(3, "opposite", NodeTypeEvent, 0, chaos.Fingerprint{}, vecOf(-1, 0))

	results := e.ScanVectorTopK(vecOf(1, 0), 3, 2)
	require.Len(t, results, 3)
	assert.EqualValues(t, 2, results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 0.01)
	assert.EqualValues(t, 3, results[2].ID)
}

func TestSearchHybridFiltersByChaosBeforeCosineRerank(t *testing.T) {
	e := openTestEngine(t)

	var query chaos.Fingerprint
	query.Lanes[0] = 0xAAAA

	hot := query
	hot.Lanes[0] ^= 0b111 // 3 bits away, well inside a small L1 radius

	var cold chaos.Fingerprint
	cold.Lanes[0] = ^query.Lanes[0] // maximally far, outside the L1 radius

	e.InsertNode(1, "hot", NodeTypeEvent, 0, hot, vecOf(1, 0))
	e.InsertNode(2, "cold", NodeTypeEvent, 0, cold, vecOf(1, 0))

	results := e.SearchHybrid(query, vecOf(1, 0), 8, 10, 5, 2)
	require.Len(t, results, 1)
	assert.EqualValues(t, 1, results[0].ID)
}

func TestDeleteRowTombstonesAndSkipsScans(t *testing.T) {
	e := openTestEngine(t)

	var fp chaos.Fingerprint
	e.InsertNode(1, "a", NodeTypeEvent, 0, fp, nil)
	e.InsertNode(2, "b", NodeTypeEvent, 0, fp, nil)

	require.NoError(t, e.DeleteRow(0))
	assert.Equal(t, 1, e.TombstoneCount())

	results := e.ScanChaosParallel(fp, 1000, 10, 2)
	require.Len(t, results, 1)
	assert.EqualValues(t, 2, results[0].ID)
}

func TestPersistCompactsTombstonedRows(t *testing.T) {
	e := openTestEngine(t)

	var fp chaos.Fingerprint
	e.InsertNode(1, "a", NodeTypeEvent, 0, fp, nil)
	e.InsertNode(2, "b", NodeTypeEvent, 0, fp, nil)
	require.NoError(t, e.DeleteRow(0))

	require.NoError(t, e.Persist())
	assert.Equal(t, 1, e.NodeCount())
	assert.Equal(t, 0, e.TombstoneCount())

	id0, err := e.GetID(0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, id0)
}

func TestDeleteRowOutOfRangeErrors(t *testing.T) {
	e := openTestEngine(t)
	assert.ErrorIs(t, e.DeleteRow(0), ErrNotFound)
}
