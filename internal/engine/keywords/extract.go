// Package keywords extracts representative keywords from free text with
// TextRank.
//
// Pipeline: sentences -> words -> stoplist and alphanumeric filter -> POS
// filter (nouns, adjectives, gerunds, base and past verbs) -> Porter stem ->
// co-occurrence graph -> PageRank -> top-N stems, where N depends on the
// length of the input text.
//
// All exported functions and types are safe for concurrent use.
package keywords

import (
	"unicode/utf8"

	"github.com/anatolykoptev/go_careers/internal/engine"
)

// Extractor runs the full keyword pipeline with a fixed Config.
type Extractor struct {
	cfg        Config
	normalizer *Normalizer
}

// NewExtractor returns an Extractor. A nil tagger selects ProseTagger.
func NewExtractor(cfg Config, tagger Tagger) *Extractor {
	return &Extractor{cfg: cfg, normalizer: NewNormalizer(cfg, tagger)}
}

// Config returns the configuration the extractor was built with.
func (e *Extractor) Config() Config { return e.cfg }

// TopN returns the number of keywords requested for text.
func (e *Extractor) TopN(text string) int {
	return e.cfg.TopN(utf8.RuneCountInString(text))
}

// ExtractRanked returns at most TopN(text) keywords with their scores,
// highest first. Text with no content words yields nil.
func (e *Extractor) ExtractRanked(text string) []Keyword {
	engine.IncrExtractions()
	sentences := e.normalizer.Normalize(text)
	gr := BuildGraph(sentences, e.cfg.Window)
	if gr.Len() == 0 {
		return nil
	}
	ranked := Rank(gr, e.cfg)
	if n := e.TopN(text); len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Extract returns the stems of ExtractRanked. Stems are unique.
func (e *Extractor) Extract(text string) []string {
	ranked := e.ExtractRanked(text)
	if len(ranked) == 0 {
		return nil
	}
	out := make([]string, len(ranked))
	for i, kw := range ranked {
		out[i] = kw.Stem
	}
	return out
}
