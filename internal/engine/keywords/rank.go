package keywords

import (
	"log/slog"
	"math"
	"slices"

	"github.com/anatolykoptev/go_careers/internal/engine"
)

// Keyword is a ranked stem.
type Keyword struct {
	Stem  string  `json:"stem"`
	Score float64 `json:"score"`
}

// RankResult carries the PageRank scores indexed by node ID plus
// convergence diagnostics.
type RankResult struct {
	Scores     []float64
	Iterations int
	Converged  bool
}

// PageRank computes the stationary distribution of a damped random walk
// over gr. A walker moves to a neighbor with probability proportional to the
// edge weight, or teleports uniformly with probability 1-damping. Nodes
// without edges spread their mass uniformly, so isolated stems and small
// components still receive non-zero scores.
//
// Iteration stops when the L1 change drops below n*tol, or after maxIter
// rounds; in the latter case the last iterate is returned with
// Converged=false and a warning is logged.
func PageRank(gr *Graph, damping, tol float64, maxIter int) RankResult {
	n := gr.Len()
	if n == 0 {
		return RankResult{Converged: true}
	}

	adj := make([][]int64, n)
	wts := make([][]float64, n)
	outWeight := make([]float64, n)
	for id := range n {
		adj[id], wts[id] = gr.neighbors(int64(id))
		for _, w := range wts[id] {
			outWeight[id] += w
		}
	}

	nf := float64(n)
	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / nf
	}

	for iter := 1; iter <= maxIter; iter++ {
		dangling := 0.0
		for i := range n {
			if outWeight[i] == 0 {
				dangling += x[i]
			}
		}

		next := make([]float64, n)
		for i := range n {
			sum := 0.0
			for k, j := range adj[i] {
				sum += x[j] * wts[i][k] / outWeight[j]
			}
			next[i] = damping*(sum+dangling/nf) + (1-damping)/nf
		}

		delta := 0.0
		for i := range n {
			delta += math.Abs(next[i] - x[i])
		}
		x = next
		if delta < nf*tol {
			return RankResult{Scores: x, Iterations: iter, Converged: true}
		}
	}

	engine.IncrPageRankNonConverged()
	slog.Warn("keywords: pagerank did not converge",
		slog.Int("nodes", n),
		slog.Int("max_iter", maxIter),
		slog.Float64("tolerance", tol))
	return RankResult{Scores: x, Iterations: maxIter, Converged: false}
}

// Rank runs PageRank over gr and returns all stems ordered by score
// descending. Equal scores keep first-occurrence order.
func Rank(gr *Graph, cfg Config) []Keyword {
	res := PageRank(gr, cfg.Damping, cfg.Tolerance, cfg.MaxIter)
	out := make([]Keyword, len(res.Scores))
	for id, score := range res.Scores {
		out[id] = Keyword{Stem: gr.Stems[id], Score: score}
	}
	slices.SortStableFunc(out, func(a, b Keyword) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return out
}
