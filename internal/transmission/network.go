package transmission

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// DefaultDistanceThreshold is the genetic distance at or below which two
// isolates are considered plausibly linked by transmission.
const DefaultDistanceThreshold = 5

// IsolateMetadata carries the descriptive fields attached to a network node.
type IsolateMetadata struct {
	Pathogen string `json:"pathogen,omitempty"`
	Region   string `json:"region,omitempty"`
}

// Edge is one transmission link: two isolates within the distance threshold,
// with the likelihood weighting 1/(1+distance).
type Edge struct {
	From                   string  `json:"from"`
	To                     string  `json:"to"`
	GeneticDistance        int     `json:"genetic_distance"`
	TransmissionLikelihood float64 `json:"transmission_likelihood"`
}

// Cluster is a connected component of the network with at least the minimum
// number of members.
type Cluster struct {
	Size     int      `json:"size"`
	Isolates []string `json:"isolates"`
}

// CentralityRow holds the centrality measures for one isolate.
type CentralityRow struct {
	IsolateID             string  `json:"isolate_id"`
	DegreeCentrality      float64 `json:"degree_centrality"`
	BetweennessCentrality float64 `json:"betweenness_centrality"`
	ClosenessCentrality   float64 `json:"closeness_centrality"`
}

// Network is a transmission network over a fixed set of isolates. Build it
// with BuildNetwork; it is read-only afterwards.
type Network struct {
	ids        []string
	indexByID  map[string]int64
	graph      *simple.UndirectedGraph
	metadata   map[string]IsolateMetadata
	distance   map[[2]int64]int
	likelihood map[[2]int64]float64
}

// BuildNetwork computes pairwise Hamming distances over the sequences and
// connects every isolate pair at or below the distance threshold. Metadata
// entries are optional and matched by isolate ID.
func BuildNetwork(sequences map[string]string, metadata map[string]IsolateMetadata, distanceThreshold int) (*Network, error) {
	if len(sequences) == 0 {
		return nil, fmt.Errorf("no genetic sequences provided")
	}
	if distanceThreshold < 0 {
		return nil, fmt.Errorf("distance threshold must be non-negative, got %d", distanceThreshold)
	}

	ids, matrix := DistanceMatrix(sequences)

	n := &Network{
		ids:        ids,
		indexByID:  make(map[string]int64, len(ids)),
		graph:      simple.NewUndirectedGraph(),
		metadata:   make(map[string]IsolateMetadata, len(metadata)),
		distance:   make(map[[2]int64]int),
		likelihood: make(map[[2]int64]float64),
	}

	for i, id := range ids {
		n.indexByID[id] = int64(i)
		n.graph.AddNode(simple.Node(int64(i)))
		if m, ok := metadata[id]; ok {
			n.metadata[id] = m
		}
	}

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			d := matrix[i][j]
			if d > distanceThreshold {
				continue
			}
			u, v := int64(i), int64(j)
			n.graph.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
			key := edgeKey(u, v)
			n.distance[key] = d
			n.likelihood[key] = 1 / (1 + float64(d))
		}
	}

	return n, nil
}

func edgeKey(u, v int64) [2]int64 {
	if u > v {
		u, v = v, u
	}
	return [2]int64{u, v}
}

// NodeCount returns the number of isolates in the network.
func (n *Network) NodeCount() int {
	return len(n.ids)
}

// Isolates returns the isolate IDs in stable (sorted) order.
func (n *Network) Isolates() []string {
	out := make([]string, len(n.ids))
	copy(out, n.ids)
	return out
}

// Metadata returns the metadata recorded for an isolate, if any.
func (n *Network) Metadata(id string) (IsolateMetadata, bool) {
	m, ok := n.metadata[id]
	return m, ok
}

// Edges lists all transmission links, ordered by the sorted isolate indices.
func (n *Network) Edges() []Edge {
	keys := make([][2]int64, 0, len(n.distance))
	for key := range n.distance {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	edges := make([]Edge, 0, len(keys))
	for _, key := range keys {
		edges = append(edges, Edge{
			From:                   n.ids[key[0]],
			To:                     n.ids[key[1]],
			GeneticDistance:        n.distance[key],
			TransmissionLikelihood: n.likelihood[key],
		})
	}
	return edges
}

// Clusters returns the connected components with at least minSize members,
// largest first. Isolates within a cluster are sorted by ID.
func (n *Network) Clusters(minSize int) []Cluster {
	if minSize < 1 {
		minSize = 1
	}

	var clusters []Cluster
	for _, component := range topo.ConnectedComponents(n.graph) {
		if len(component) < minSize {
			continue
		}
		isolates := make([]string, 0, len(component))
		for _, node := range component {
			isolates = append(isolates, n.ids[node.ID()])
		}
		sort.Strings(isolates)
		clusters = append(clusters, Cluster{Size: len(isolates), Isolates: isolates})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Size != clusters[j].Size {
			return clusters[i].Size > clusters[j].Size
		}
		return clusters[i].Isolates[0] < clusters[j].Isolates[0]
	})
	return clusters
}

// Centrality computes degree, betweenness and closeness centrality for every
// isolate. Degree is normalized by n-1. Betweenness and closeness are the
// graph library's raw shortest-path measures and are NOT normalized: unlike
// tools that rescale betweenness by (n-1)(n-2)/2 and closeness to [0,1],
// these values grow with network size and are only comparable within one
// network. Closeness is reported as 0 for isolates that cannot reach the
// whole network.
func (n *Network) Centrality() []CentralityRow {
	betweenness := network.Betweenness(n.graph)
	closeness := network.Closeness(n.graph, path.DijkstraAllPaths(n.graph))

	denominator := float64(len(n.ids) - 1)

	rows := make([]CentralityRow, 0, len(n.ids))
	for i, id := range n.ids {
		nodeID := int64(i)

		degree := 0.0
		if denominator > 0 {
			degree = float64(n.graph.From(nodeID).Len()) / denominator
		}

		c := closeness[nodeID]
		if c < 0 || c != c { // NaN guard for unreachable pairs
			c = 0
		}

		rows = append(rows, CentralityRow{
			IsolateID:             id,
			DegreeCentrality:      degree,
			BetweennessCentrality: betweenness[nodeID],
			ClosenessCentrality:   c,
		})
	}
	return rows
}

// neighbors returns the node IDs adjacent to the given node.
func (n *Network) neighbors(nodeID int64) []int64 {
	var out []int64
	it := n.graph.From(nodeID)
	for it.Next() {
		out = append(out, it.Node().ID())
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
