package keywords

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// Normalizer turns free text into sentences of stemmed content words:
// split -> stoplist/alphanumeric filter -> POS filter -> stem -> length cap.
type Normalizer struct {
	cfg    Config
	tagger Tagger
}

// NewNormalizer returns a Normalizer. A nil tagger selects ProseTagger.
func NewNormalizer(cfg Config, tagger Tagger) *Normalizer {
	if tagger == nil {
		tagger = NewProseTagger()
	}
	return &Normalizer{cfg: cfg, tagger: tagger}
}

// Normalize returns one slice of stems per sentence. Sentences may be empty.
// Empty or whitespace-only text yields nil.
func (n *Normalizer) Normalize(text string) [][]string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	sentences := n.tagger.Sentences(text)
	out := make([][]string, 0, len(sentences))
	for _, sentence := range sentences {
		out = append(out, n.normalizeSentence(sentence))
	}
	return out
}

func (n *Normalizer) normalizeSentence(sentence string) []string {
	words := n.tagger.Words(sentence)
	kept := words[:0:0]
	for _, w := range words {
		if !isAlnum(w) || n.cfg.isStopword(strings.ToLower(w)) {
			continue
		}
		kept = append(kept, w)
	}

	var stems []string
	for _, tw := range n.tagger.Tag(kept) {
		if !n.cfg.allowsTag(tw.Tag) || !isAlnum(tw.Text) {
			continue
		}
		stem := Stem(tw.Text)
		if utf8.RuneCountInString(stem) > MaxKeywordLen {
			continue
		}
		stems = append(stems, stem)
	}
	return stems
}

// Stem reduces a word to its lowercase Porter stem. Two words with the
// same stem are the same keyword everywhere downstream.
func Stem(word string) string {
	return english.Stem(word, true)
}

// isAlnum reports whether s is non-empty and made only of letters and digits.
func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
