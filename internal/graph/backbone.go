package graph

import "sort"

// BuildTemporalBackbone sorts every event node by (timestamp, id) and
// links prev_event/next_event into a doubly-linked list, per spec §3.7.
// It is rebuilt lazily after bulk loads rather than kept incrementally
// current on every add_event.
func (g *Graph) BuildTemporalBackbone() {
	g.mu.Lock()
	defer g.mu.Unlock()

	events := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Kind == KindEvent {
			events = append(events, n)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Timestamp != events[j].Timestamp {
			return events[i].Timestamp < events[j].Timestamp
		}
		return events[i].ID < events[j].ID
	})

	for i, n := range events {
		if i > 0 {
			n.PrevEvent = events[i-1].ID
		} else {
			n.PrevEvent = 0
		}
		if i < len(events)-1 {
			n.NextEvent = events[i+1].ID
		} else {
			n.NextEvent = 0
		}
	}

	if len(events) > 0 {
		g.eventHead = events[0].ID
		g.eventTail = events[len(events)-1].ID
	} else {
		g.eventHead = 0
		g.eventTail = 0
	}
}

// EventHead returns the earliest event id in the temporal backbone, or 0
// if empty.
func (g *Graph) EventHead() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.eventHead
}

// EventTail returns the latest event id in the temporal backbone, or 0
// if empty.
func (g *Graph) EventTail() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.eventTail
}
