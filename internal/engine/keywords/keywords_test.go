package keywords

import (
	"strings"
)

// stubTagger splits sentences on '.', words on whitespace and tags every
// word NN unless listed in tags.
type stubTagger struct {
	tags  map[string]string
	calls int
}

func (s *stubTagger) Sentences(text string) []string {
	s.calls++
	var out []string
	for _, part := range strings.Split(text, ".") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *stubTagger) Words(sentence string) []string { return strings.Fields(sentence) }

func (s *stubTagger) Tag(words []string) []TaggedWord {
	out := make([]TaggedWord, len(words))
	for i, w := range words {
		tag, ok := s.tags[strings.ToLower(w)]
		if !ok {
			tag = TagNoun
		}
		out[i] = TaggedWord{Text: w, Tag: tag}
	}
	return out
}

func stems(words ...string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Stem(w)
	}
	return out
}
