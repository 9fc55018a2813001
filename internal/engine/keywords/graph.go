package keywords

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
)

// Graph is a weighted undirected co-occurrence graph over stems.
// Node IDs are assigned in first-occurrence order, so Stems[id] is the
// stem of node id and iteration by ID is deterministic.
type Graph struct {
	g     *simple.WeightedUndirectedGraph
	Stems []string
	index map[string]int64
}

// BuildGraph links every pair of distinct stems that occur fewer than
// window positions apart inside the same sentence. Each co-occurrence adds
// 1 to the edge weight. Every stem becomes a node, including stems that
// never co-occur with another one.
func BuildGraph(sentences [][]string, window int) *Graph {
	gr := &Graph{
		g:     simple.NewWeightedUndirectedGraph(0, 0),
		index: make(map[string]int64),
	}
	for _, sentence := range sentences {
		for _, s := range sentence {
			gr.node(s)
		}
	}
	for _, sentence := range sentences {
		for i, s := range sentence {
			end := min(i+window, len(sentence))
			for j := i + 1; j < end; j++ {
				gr.link(s, sentence[j])
			}
		}
	}
	return gr
}

func (gr *Graph) node(stem string) int64 {
	if id, ok := gr.index[stem]; ok {
		return id
	}
	id := int64(len(gr.Stems))
	gr.index[stem] = id
	gr.Stems = append(gr.Stems, stem)
	gr.g.AddNode(simple.Node(id))
	return id
}

func (gr *Graph) link(a, b string) {
	if a == b {
		return
	}
	u, v := gr.node(a), gr.node(b)
	w, _ := gr.g.Weight(u, v)
	gr.g.SetWeightedEdge(gr.g.NewWeightedEdge(simple.Node(u), simple.Node(v), w+1))
}

// Len returns the number of nodes.
func (gr *Graph) Len() int { return len(gr.Stems) }

// Weight returns the accumulated co-occurrence weight between two stems.
func (gr *Graph) Weight(a, b string) float64 {
	u, ok := gr.index[a]
	if !ok {
		return 0
	}
	v, ok := gr.index[b]
	if !ok || u == v {
		return 0
	}
	w, _ := gr.g.Weight(u, v)
	return w
}

// neighbors returns the adjacent node IDs of id in ascending order with
// their edge weights.
func (gr *Graph) neighbors(id int64) ([]int64, []float64) {
	it := gr.g.From(id)
	ids := make([]int64, 0, it.Len())
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	ws := make([]float64, len(ids))
	for i, nid := range ids {
		ws[i], _ = gr.g.Weight(id, nid)
	}
	return ids, ws
}
