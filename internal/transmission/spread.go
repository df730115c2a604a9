package transmission

import (
	"fmt"
	"math/rand"
	"sort"
)

// SimulateSpread runs a simple stochastic transmission model: at each step,
// every infected isolate infects each still-susceptible neighbor with
// probability equal to the edge's transmission likelihood. The returned
// slice has steps+1 entries; entry 0 is the sorted initial case set and each
// later entry is the sorted infected set after that step. The seed makes runs
// reproducible.
func (n *Network) SimulateSpread(initialCases []string, steps int, seed int64) ([][]string, error) {
	if len(initialCases) == 0 {
		return nil, fmt.Errorf("at least one initial case is required")
	}
	if steps < 0 {
		return nil, fmt.Errorf("steps must be non-negative, got %d", steps)
	}

	infected := make(map[int64]bool, len(initialCases))
	for _, id := range initialCases {
		index, ok := n.indexByID[id]
		if !ok {
			return nil, fmt.Errorf("unknown isolate %q in initial cases", id)
		}
		infected[index] = true
	}

	rng := rand.New(rand.NewSource(seed))

	history := make([][]string, 0, steps+1)
	history = append(history, n.infectedIDs(infected))

	for step := 0; step < steps; step++ {
		newInfections := make(map[int64]bool)

		// Iterate infected nodes in stable order so the RNG stream, and
		// therefore the outcome, is reproducible for a given seed.
		order := make([]int64, 0, len(infected))
		for node := range infected {
			order = append(order, node)
		}
		sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

		for _, node := range order {
			for _, neighbor := range n.neighbors(node) {
				if infected[neighbor] || newInfections[neighbor] {
					continue
				}
				if rng.Float64() < n.likelihood[edgeKey(node, neighbor)] {
					newInfections[neighbor] = true
				}
			}
		}

		for node := range newInfections {
			infected[node] = true
		}
		history = append(history, n.infectedIDs(infected))
	}

	return history, nil
}

func (n *Network) infectedIDs(infected map[int64]bool) []string {
	ids := make([]string, 0, len(infected))
	for node := range infected {
		ids = append(ids, n.ids[node])
	}
	sort.Strings(ids)
	return ids
}
