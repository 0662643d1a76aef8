package retrieval

// activation is an insertion-ordered energy map. Every pipeline stage
// reads and writes through it so that the final sort's tie-break — "by
// insertion order" per spec §4.4 — has a stable, cheap answer.
type activation struct {
	energy map[int64]float64
	order  map[int64]int
	seq    int
}

func newActivation() *activation {
	return &activation{
		energy: make(map[int64]float64),
		order:  make(map[int64]int),
	}
}

func (a *activation) touch(id int64) {
	if _, ok := a.order[id]; !ok {
		a.order[id] = a.seq
		a.seq++
	}
}

// raiseMax sets id's energy to v if v is greater than its current value
// (or if id hasn't been touched yet).
func (a *activation) raiseMax(id int64, v float64) {
	a.touch(id)
	if cur, ok := a.energy[id]; !ok || v > cur {
		a.energy[id] = v
	}
}

// add accumulates delta into id's current energy.
func (a *activation) add(id int64, delta float64) {
	a.touch(id)
	a.energy[id] += delta
}

// set overwrites id's energy unconditionally.
func (a *activation) set(id int64, v float64) {
	a.touch(id)
	a.energy[id] = v
}

func (a *activation) get(id int64) float64 {
	return a.energy[id]
}

// ids returns every touched id in insertion order.
func (a *activation) ids() []int64 {
	out := make([]int64, len(a.order))
	for id, pos := range a.order {
		out[pos] = id
	}
	return out
}

func (a *activation) sum() float64 {
	var total float64
	for _, v := range a.energy {
		total += v
	}
	return total
}

func (a *activation) scaleAll(factor float64) {
	for id := range a.energy {
		a.energy[id] *= factor
	}
}
