package storage

import (
	"container/heap"
	"context"
	"runtime"
	"sort"

	"github.com/klauspost/cpuid/v2"
	"github.com/x448/float16"
	"golang.org/x/sync/errgroup"

	"github.com/yokoncy/pedsa/internal/chaos"
	"github.com/yokoncy/pedsa/internal/fingerprint"
	"github.com/yokoncy/pedsa/internal/retrieval"
)

// ScanSIMD returns the row index with the single highest masked
// similarity to query, per spec §4.6's scan_simd. The AVX2-gated hot
// path and the scalar fallback compute the identical popcount formula;
// cpuid only chooses which unrolled loop runs.
func (e *Engine) ScanSIMD(query, mask uint64) (idx int, similarity float64, found bool) {
	return e.ScanSIMDFiltered(query, mask, nil)
}

// ScanSIMDFiltered is ScanSIMD restricted to rows for which filter
// returns true (or all rows, if filter is nil). Per spec §4.6, the
// AVX2-gated hot path and the scalar fallback both partition the row
// range across a worker pool and reduce each chunk's local best by a
// max over masked Hamming similarity, mirroring ScanChaosParallel's
// chunk-then-merge shape; cpuid only chooses which unrolled loop a
// chunk runs, not whether the scan is parallel.
func (e *Engine) ScanSIMDFiltered(query, mask uint64, filter func(idx int) bool) (idx int, similarity float64, found bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := e.diskCount + len(e.bufIDs)
	if total == 0 {
		return 0, 0, false
	}

	workers := runtime.NumCPU()
	if workers > total {
		workers = total
	}
	chunks := splitRange(total, workers)

	type chunkBest struct {
		idx int
		sim float64
	}
	partials := make([]chunkBest, len(chunks))

	avx2 := cpuid.CPU.Supports(cpuid.AVX2)
	g, _ := errgroup.WithContext(context.Background())
	for w, chunk := range chunks {
		w, chunk := w, chunk
		g.Go(func() error {
			best := chunkBest{idx: -1, sim: -1.0}
			scan := func(i int) {
				if e.isTombstoned(i) {
					return
				}
				if filter != nil && !filter(i) {
					return
				}
				sim := fingerprint.SimilarityWeighted(fingerprint.Fingerprint(e.simhashAt(i)), fingerprint.Fingerprint(query), fingerprint.Fingerprint(mask))
				if sim > best.sim {
					best.sim = sim
					best.idx = i
				}
			}

			if avx2 {
				for i := chunk.start; i < chunk.end; i += 4 {
					end := i + 4
					if end > chunk.end {
						end = chunk.end
					}
					for j := i; j < end; j++ {
						scan(j)
					}
				}
			} else {
				for i := chunk.start; i < chunk.end; i++ {
					scan(i)
				}
			}

			partials[w] = best
			return nil
		})
	}
	_ = g.Wait()

	bestIdx, bestSim := -1, -1.0
	for _, p := range partials {
		if p.idx >= 0 && p.sim > bestSim {
			bestSim = p.sim
			bestIdx = p.idx
		}
	}

	if bestIdx < 0 {
		return 0, 0, false
	}
	return bestIdx, bestSim, true
}

func (e *Engine) simhashAt(i int) uint64 {
	if i < e.diskCount {
		return e.diskSimhash(i)
	}
	return e.bufSimhash[i-e.diskCount]
}

func (e *Engine) chaosAt(i int) chaos.Fingerprint {
	if i < e.diskCount {
		return e.diskChaos(i)
	}
	return e.bufChaos[i-e.diskCount]
}

func (e *Engine) vectorAt(i int) []float16.Float16 {
	if i < e.diskCount {
		return e.diskVector(i)
	}
	return e.bufVector[i-e.diskCount]
}

func (e *Engine) idAt(i int) int64 {
	if i < e.diskCount {
		return e.diskID(i)
	}
	return e.bufIDs[i-e.diskCount]
}

// ChaosScanResult is one row's outcome from ScanChaosParallel.
type ChaosScanResult struct {
	Idx      int
	ID       int64
	Distance int
}

// chaosHeap is a bounded max-heap on Distance: the root is always the
// farthest survivor currently kept, so pushing past capacity evicts it
// first. This keeps the N closest rows, matching spec §4.6's
// scan_chaos_parallel ("the max-heap retains the smallest N distances").
type chaosHeap []ChaosScanResult

func (h chaosHeap) Len() int            { return len(h) }
func (h chaosHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h chaosHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *chaosHeap) Push(x interface{}) { *h = append(*h, x.(ChaosScanResult)) }
func (h *chaosHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func pushBoundedChaos(h *chaosHeap, item ChaosScanResult, capacity int) {
	if h.Len() < capacity {
		heap.Push(h, item)
		return
	}
	if h.Len() > 0 && item.Distance < (*h)[0].Distance {
		heap.Pop(h)
		heap.Push(h, item)
	}
}

// ScanChaosParallel returns every row within maxDistance Hamming bits of
// query, sorted ascending by distance, truncated to topN, per spec
// §4.6's scan_chaos_parallel. Work is split across workers goroutines,
// each keeping its own bounded max-heap of size topN; the per-worker
// heaps are merged and re-bounded at the end.
func (e *Engine) ScanChaosParallel(query chaos.Fingerprint, maxDistance, topN, workers int) []ChaosScanResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := e.diskCount + len(e.bufIDs)
	if total == 0 || topN <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}

	chunks := splitRange(total, workers)
	partials := make([]chaosHeap, len(chunks))

	g, _ := errgroup.WithContext(context.Background())
	for w, chunk := range chunks {
		w, chunk := w, chunk
		g.Go(func() error {
			var local chaosHeap
			for i := chunk.start; i < chunk.end; i++ {
				if e.isTombstoned(i) {
					continue
				}
				dist := query.HammingDistance(e.chaosAt(i))
				if dist > maxDistance {
					continue
				}
				pushBoundedChaos(&local, ChaosScanResult{Idx: i, ID: e.idAt(i), Distance: dist}, topN)
			}
			partials[w] = local
			return nil
		})
	}
	_ = g.Wait()

	var merged chaosHeap
	for _, p := range partials {
		for _, item := range p {
			pushBoundedChaos(&merged, item, topN)
		}
	}

	out := make([]ChaosScanResult, len(merged))
	copy(out, merged)
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// ScanChaos implements retrieval.ChaosStore for the S9 chaos-track
// fusion stage.
func (e *Engine) ScanChaos(query chaos.Fingerprint, maxDistance, limit int) []retrieval.ChaosCandidate {
	rows := e.ScanChaosParallel(query, maxDistance, limit, runtime.NumCPU())
	out := make([]retrieval.ChaosCandidate, len(rows))
	for i, r := range rows {
		out[i] = retrieval.ChaosCandidate{
			ID:       r.ID,
			Distance: r.Distance,
			Vector:   e.vectorAt(r.Idx),
		}
	}
	return out
}

// VectorScanResult is one row's outcome from ScanVectorTopK.
type VectorScanResult struct {
	Idx   int
	ID    int64
	Score float32
}

// vecHeap is a bounded min-heap on Score: the root is always the worst
// survivor currently kept, so pushing past capacity evicts it first.
// This keeps the K highest-scoring rows.
type vecHeap []VectorScanResult

func (h vecHeap) Len() int            { return len(h) }
func (h vecHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h vecHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *vecHeap) Push(x interface{}) { *h = append(*h, x.(VectorScanResult)) }
func (h *vecHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func pushBoundedVec(h *vecHeap, item VectorScanResult, capacity int) {
	if h.Len() < capacity {
		heap.Push(h, item)
		return
	}
	if h.Len() > 0 && item.Score > (*h)[0].Score {
		heap.Pop(h)
		heap.Push(h, item)
	}
}

// ScanVectorTopK returns the topK rows by cosine similarity to query,
// sorted descending, per spec §4.6's scan_vector_top_k. Same
// bounded-heap-per-worker pattern as ScanChaosParallel.
func (e *Engine) ScanVectorTopK(query []float16.Float16, topK, workers int) []VectorScanResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := e.diskCount + len(e.bufIDs)
	if total == 0 || topK <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}

	chunks := splitRange(total, workers)
	partials := make([]vecHeap, len(chunks))

	g, _ := errgroup.WithContext(context.Background())
	for w, chunk := range chunks {
		w, chunk := w, chunk
		g.Go(func() error {
			var local vecHeap
			for i := chunk.start; i < chunk.end; i++ {
				if e.isTombstoned(i) {
					continue
				}
				score := chaos.CosineSimilarity(query, e.vectorAt(i))
				pushBoundedVec(&local, VectorScanResult{Idx: i, ID: e.idAt(i), Score: score}, topK)
			}
			partials[w] = local
			return nil
		})
	}
	_ = g.Wait()

	var merged vecHeap
	for _, p := range partials {
		for _, item := range p {
			pushBoundedVec(&merged, item, topK)
		}
	}

	out := make([]VectorScanResult, len(merged))
	copy(out, merged)
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// SearchHybrid filters candidates to those within chaosMaxDistance
// Hamming bits (the L1 stage), keeps the closest l1TopN, then reranks
// the survivors by cosine similarity and returns the best topK, per
// spec §4.6's search_hybrid.
func (e *Engine) SearchHybrid(chaosQuery chaos.Fingerprint, vectorQuery []float16.Float16, chaosMaxDistance, l1TopN, topK, workers int) []VectorScanResult {
	survivors := e.ScanChaosParallel(chaosQuery, chaosMaxDistance, l1TopN, workers)
	if len(survivors) == 0 {
		return nil
	}

	e.mu.RLock()
	results := make([]VectorScanResult, len(survivors))
	for i, s := range survivors {
		results[i] = VectorScanResult{
			Idx:   s.Idx,
			ID:    s.ID,
			Score: chaos.CosineSimilarity(vectorQuery, e.vectorAt(s.Idx)),
		}
	}
	e.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

type rowRange struct{ start, end int }

func splitRange(total, workers int) []rowRange {
	if workers < 1 {
		workers = 1
	}
	chunkSize := (total + workers - 1) / workers
	var chunks []rowRange
	for start := 0; start < total; start += chunkSize {
		end := start + chunkSize
		if end > total {
			end = total
		}
		chunks = append(chunks, rowRange{start: start, end: end})
	}
	return chunks
}
