package retrieval

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// s6MemoryDiffusion implements spec §4.4 S6: sort activated nodes by
// descending energy, truncate to the top 5,000 seed set, and propagate
// along the memory graph in parallel (decay 0.85, hard-squelch 0.01),
// summing contributions at each target and merging per-chunk
// accumulators into the shared activation map.
func (p *Pipeline) s6MemoryDiffusion(ctx context.Context, act *activation) error {
	seeds := topKByEnergyDesc(act, 5000)
	if len(seeds) == 0 {
		return nil
	}

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	chunks := chunkSeeds(seeds, workers)
	partials := make([]map[int64]float64, len(chunks))

	group, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(workers))

	for i, chunk := range chunks {
		i, chunk := i, chunk
		group.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			local := make(map[int64]float64)
			for _, seed := range chunk {
				srcEnergy := act.get(seed)
				for _, e := range p.Graph.MemoryEdges(seed) {
					w := float64(e.Strength) / 65535
					contribution := srcEnergy * w * 0.85
					if math.Abs(contribution) < 0.01 {
						continue
					}
					local[e.TargetID] += contribution
				}
			}
			partials[i] = local
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for _, partial := range partials {
		for id, delta := range partial {
			act.add(id, delta)
		}
	}
	return nil
}
