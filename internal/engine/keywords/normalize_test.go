package keywords

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStem_Equivalence(t *testing.T) {
	pairs := [][2]string{
		{"developing", "develop"},
		{"software", "softwares"},
		{"Engineers", "engineer"},
	}
	for _, p := range pairs {
		assert.Equal(t, Stem(p[0]), Stem(p[1]), "%s vs %s", p[0], p[1])
	}
	assert.Equal(t, "develop", Stem("Developing"))
}

func TestNormalize(t *testing.T) {
	tagger := &stubTagger{tags: map[string]string{
		"experienced": TagAdjective,
		"developing":  TagGerund,
		"quickly":     "RB",
		"builds":      "VBZ",
	}}
	n := NewNormalizer(DefaultConfig(), tagger)

	got := n.Normalize("The experienced developer is developing software quickly . She builds C++ tools")
	want := [][]string{
		stems("experienced", "developer", "developing", "software"),
		stems("tools"),
	}
	assert.Equal(t, want, got)
}

func TestNormalize_DropsNonAlphanumeric(t *testing.T) {
	n := NewNormalizer(DefaultConfig(), &stubTagger{})
	got := n.Normalize("node.js , C# - golang 2024")
	// "node.js" is split on '.' by the stub, leaving "node" and "js".
	assert.Equal(t, [][]string{stems("node"), stems("js", "golang", "2024")}, got)
}

func TestNormalize_DropsOverlongTokens(t *testing.T) {
	n := NewNormalizer(DefaultConfig(), &stubTagger{})
	long := strings.Repeat("x", 150)
	edge := strings.Repeat("y", MaxKeywordLen)

	got := n.Normalize("Senior engineer " + long + " certification in Python " + edge)
	assert.Equal(t, [][]string{stems("senior", "engineer", "certification", "python", edge)}, got)
	for _, s := range got[0] {
		assert.LessOrEqual(t, utf8.RuneCountInString(s), MaxKeywordLen)
	}
}

func TestNormalize_Empty(t *testing.T) {
	tagger := &stubTagger{}
	n := NewNormalizer(DefaultConfig(), tagger)
	for _, text := range []string{"", "   ", "\n\t"} {
		assert.Nil(t, n.Normalize(text))
	}
	assert.Zero(t, tagger.calls, "blank text never reaches the tagger")
}

func TestNormalize_OnlyStopwords(t *testing.T) {
	n := NewNormalizer(DefaultConfig(), &stubTagger{})
	got := n.Normalize("the and of skills with experience")
	assert.Equal(t, [][]string{nil}, got)
}

func TestIsAlnum(t *testing.T) {
	assert.True(t, isAlnum("python3"))
	assert.True(t, isAlnum("Zürich"))
	assert.False(t, isAlnum(""))
	assert.False(t, isAlnum("c++"))
	assert.False(t, isAlnum("e-mail"))
}
