package keywords

import (
	"math"
	"testing"

	"github.com/anatolykoptev/go_careers/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

func TestPageRank_Empty(t *testing.T) {
	res := PageRank(BuildGraph(nil, 5), 0.85, 1e-6, 100)
	assert.True(t, res.Converged)
	assert.Empty(t, res.Scores)
}

func TestPageRank_SingleNode(t *testing.T) {
	res := PageRank(BuildGraph([][]string{{"python"}}, 5), 0.85, 1e-6, 100)
	require.True(t, res.Converged)
	require.Len(t, res.Scores, 1)
	assert.InDelta(t, 1.0, res.Scores[0], 1e-9)
}

func TestPageRank_IsolatedNodesScored(t *testing.T) {
	// One connected pair plus an isolated stem in its own sentence.
	gr := BuildGraph([][]string{{"python", "java"}, {"sql"}}, 5)
	res := PageRank(gr, 0.85, 1e-6, 100)
	require.True(t, res.Converged)
	for i, s := range res.Scores {
		assert.Greater(t, s, 0.0, gr.Stems[i])
		assert.False(t, math.IsNaN(s))
	}
	assert.InDelta(t, 1.0, sum(res.Scores), 1e-6)
}

func TestPageRank_StarCenterWins(t *testing.T) {
	// hub co-occurs with every leaf; leaves are farther apart than the window.
	gr := BuildGraph([][]string{
		{"hub", "a"}, {"hub", "b"}, {"hub", "c"}, {"hub", "d"},
	}, 5)
	res := PageRank(gr, 0.85, 1e-6, 100)
	require.True(t, res.Converged)
	hub := res.Scores[0]
	for i := 1; i < len(res.Scores); i++ {
		assert.Greater(t, hub, res.Scores[i])
		assert.InDelta(t, res.Scores[1], res.Scores[i], 1e-9, "leaves are symmetric")
	}
	assert.InDelta(t, 1.0, sum(res.Scores), 1e-6)
}

func TestPageRank_NonConvergenceIsNotAnError(t *testing.T) {
	before := engine.GetMetrics()["pagerank_nonconverged"]
	gr := BuildGraph([][]string{{"hub", "a"}, {"hub", "b"}, {"hub", "c"}}, 5)

	res := PageRank(gr, 0.85, 1e-6, 1)
	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Len(t, res.Scores, 4)
	assert.Equal(t, before+1, engine.GetMetrics()["pagerank_nonconverged"])
}

func TestRank_OrderAndTies(t *testing.T) {
	gr := BuildGraph([][]string{{"zeta"}, {"alpha"}, {"hub", "x"}, {"hub", "y"}}, 5)
	ranked := Rank(gr, DefaultConfig())
	require.Len(t, ranked, 5)
	assert.Equal(t, "hub", ranked[0].Stem)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}

	// zeta and alpha are isolated with equal scores; first occurrence wins.
	pos := map[string]int{}
	for i, kw := range ranked {
		pos[kw.Stem] = i
	}
	assert.Less(t, pos["zeta"], pos["alpha"])
}
