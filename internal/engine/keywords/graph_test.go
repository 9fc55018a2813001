package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildGraph_Window(t *testing.T) {
	gr := BuildGraph([][]string{{"a", "b", "c", "d", "e", "f"}}, 5)

	assert.Equal(t, 6, gr.Len())
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, gr.Stems)
	for _, other := range []string{"b", "c", "d", "e"} {
		assert.Equal(t, 1.0, gr.Weight("a", other), "a-%s", other)
	}
	assert.Zero(t, gr.Weight("a", "f"), "a and f are 5 positions apart")
	assert.Equal(t, 1.0, gr.Weight("b", "f"))
	assert.Equal(t, gr.Weight("c", "a"), gr.Weight("a", "c"), "undirected")
}

func TestBuildGraph_AccumulatesWeight(t *testing.T) {
	gr := BuildGraph([][]string{{"python", "java"}, {"java", "python"}, {"python", "sql"}}, 5)
	assert.Equal(t, 2.0, gr.Weight("python", "java"))
	assert.Equal(t, 1.0, gr.Weight("python", "sql"))
	assert.Zero(t, gr.Weight("java", "sql"))
}

func TestBuildGraph_NoSelfLoopsOrCrossSentenceEdges(t *testing.T) {
	gr := BuildGraph([][]string{{"go", "go", "rust"}, {"sql"}}, 5)
	assert.Equal(t, 3, gr.Len())
	assert.Zero(t, gr.Weight("go", "go"))
	assert.Equal(t, 2.0, gr.Weight("go", "rust"))
	assert.Zero(t, gr.Weight("rust", "sql"))
	assert.Zero(t, gr.Weight("go", "missing"))
}

func TestBuildGraph_Empty(t *testing.T) {
	assert.Zero(t, BuildGraph(nil, 5).Len())
	assert.Zero(t, BuildGraph([][]string{nil, {}}, 5).Len())
}
