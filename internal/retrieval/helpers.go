package retrieval

import "sort"

// topKByEnergyDesc returns the ids in act sorted by descending energy,
// stable on insertion order, truncated to k.
func topKByEnergyDesc(act *activation, k int) []int64 {
	ids := act.ids()
	sort.SliceStable(ids, func(i, j int) bool {
		return act.get(ids[i]) > act.get(ids[j])
	})
	if len(ids) > k {
		ids = ids[:k]
	}
	return ids
}

// chunkSeeds splits seeds into at most n roughly-equal contiguous
// chunks for the parallel S6 diffusion fan-out.
func chunkSeeds(seeds []int64, n int) [][]int64 {
	if n < 1 {
		n = 1
	}
	if len(seeds) < n {
		n = len(seeds)
	}
	if n == 0 {
		return nil
	}

	chunks := make([][]int64, n)
	base := len(seeds) / n
	rem := len(seeds) % n

	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		chunks[i] = seeds[start : start+size]
		start += size
	}
	return chunks
}
