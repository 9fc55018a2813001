package keywords

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// TaggedWord is a token with its Penn Treebank part-of-speech tag.
type TaggedWord struct {
	Text string
	Tag  string
}

// Tagger splits text into sentences and words and assigns POS tags.
// Implementations must be safe for concurrent use.
type Tagger interface {
	Sentences(text string) []string
	Words(sentence string) []string
	Tag(words []string) []TaggedWord
}

// ProseTagger is the default Tagger, backed by prose's punkt segmenter,
// treebank tokenizer and averaged-perceptron tagger.
type ProseTagger struct {
	once  sync.Once
	model *prose.Model
}

// NewProseTagger returns a tagger that loads its model on first use.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// loadModel decodes the embedded tagging model once and reuses it for
// every document afterwards.
func (p *ProseTagger) loadModel() *prose.Model {
	p.once.Do(func() {
		doc, err := prose.NewDocument("",
			prose.WithSegmentation(false),
			prose.WithExtraction(false))
		if err != nil {
			slog.Warn("keywords: prose model load failed", slog.Any("error", err))
			return
		}
		p.model = doc.Model
	})
	return p.model
}

func (p *ProseTagger) document(text string, opts ...prose.DocOpt) *prose.Document {
	if m := p.loadModel(); m != nil {
		opts = append(opts, prose.UsingModel(m))
	}
	opts = append(opts, prose.WithExtraction(false))
	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		slog.Warn("keywords: prose document failed", slog.Any("error", err))
		return nil
	}
	return doc
}

// Sentences splits text into sentences.
func (p *ProseTagger) Sentences(text string) []string {
	doc := p.document(text, prose.WithTagging(false), prose.WithTokenization(false))
	if doc == nil {
		return nil
	}
	sents := doc.Sentences()
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Words tokenizes a single sentence.
func (p *ProseTagger) Words(sentence string) []string {
	doc := p.document(sentence, prose.WithSegmentation(false), prose.WithTagging(false))
	if doc == nil {
		return nil
	}
	toks := doc.Tokens()
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Text)
	}
	return out
}

// Tag assigns POS tags to an already filtered word sequence. The words are
// re-joined with spaces, so the tagger sees them in their original order
// without the dropped tokens between them.
func (p *ProseTagger) Tag(words []string) []TaggedWord {
	if len(words) == 0 {
		return nil
	}
	doc := p.document(strings.Join(words, " "), prose.WithSegmentation(false))
	if doc == nil {
		return nil
	}
	toks := doc.Tokens()
	out := make([]TaggedWord, 0, len(toks))
	for _, t := range toks {
		out = append(out, TaggedWord{Text: t.Text, Tag: t.Tag})
	}
	return out
}
