// Package transmission builds genetic-distance transmission networks from
// isolate sequences and analyzes them: cluster detection, centrality
// measures, and a simple probabilistic spread simulation.
package transmission

import "sort"

// HammingDistance counts positionwise mismatches between two sequences,
// comparing up to the length of the shorter one.
func HammingDistance(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	distance := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			distance++
		}
	}
	return distance
}

// DistanceMatrix computes the symmetric pairwise Hamming distance matrix for
// the given sequences. Isolate IDs are returned sorted so the matrix layout
// is stable across calls.
func DistanceMatrix(sequences map[string]string) ([]string, [][]int) {
	ids := make([]string, 0, len(sequences))
	for id := range sequences {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	matrix := make([][]int, len(ids))
	for i := range matrix {
		matrix[i] = make([]int, len(ids))
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			d := HammingDistance(sequences[ids[i]], sequences[ids[j]])
			matrix[i][j] = d
			matrix[j][i] = d
		}
	}
	return ids, matrix
}
