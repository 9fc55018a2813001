package keywords

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Penn Treebank tags kept by the normalizer.
const (
	TagNoun            = "NN"
	TagNounPlural      = "NNS"
	TagProperNoun      = "NNP"
	TagProperPlural    = "NNPS"
	TagAdjective       = "JJ"
	TagGerund          = "VBG"
	TagVerbBase        = "VB"
	TagVerbPast        = "VBD"
	defaultWindow      = 5
	defaultDamping     = 0.85
	defaultTolerance   = 1e-6
	defaultMaxIter     = 100
	defaultShortLength = 100
	defaultLongLength  = 300
)

// MaxKeywordLen is the longest stem, in runes, the normalizer emits. It
// matches the width of the keyword columns.
const MaxKeywordLen = 100

// Config holds every tunable of the extraction pipeline. It is passed by
// value into NewNormalizer and NewExtractor; nothing is read from globals.
type Config struct {
	Stopwords   map[string]struct{} `yaml:"-"`
	AllowedTags map[string]struct{} `yaml:"-"`

	Window    int     `yaml:"window"`
	Damping   float64 `yaml:"damping"`
	Tolerance float64 `yaml:"tolerance"`
	MaxIter   int     `yaml:"max_iter"`

	// TopN step function: len < ShortLength -> ShortTopN,
	// len < LongLength -> MediumTopN, otherwise LongTopN.
	ShortLength int `yaml:"short_length"`
	LongLength  int `yaml:"long_length"`
	ShortTopN   int `yaml:"short_top_n"`
	MediumTopN  int `yaml:"medium_top_n"`
	LongTopN    int `yaml:"long_top_n"`
}

// DefaultConfig returns the canonical pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Stopwords: mergeStoplists(englishStopwords, careerStopwords),
		AllowedTags: map[string]struct{}{
			TagNoun: {}, TagNounPlural: {}, TagProperNoun: {}, TagProperPlural: {},
			TagAdjective: {}, TagGerund: {}, TagVerbBase: {}, TagVerbPast: {},
		},
		Window:      defaultWindow,
		Damping:     defaultDamping,
		Tolerance:   defaultTolerance,
		MaxIter:     defaultMaxIter,
		ShortLength: defaultShortLength,
		LongLength:  defaultLongLength,
		ShortTopN:   5,
		MediumTopN:  10,
		LongTopN:    15,
	}
}

// LoadConfig reads ranking overrides from a YAML file on top of DefaultConfig.
// Only numeric tuning fields are read; the stoplist and tag set are fixed.
// An empty path returns DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("keywords config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("keywords config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("keywords config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first out-of-range tuning value.
func (c Config) Validate() error {
	switch {
	case c.Window < 2:
		return fmt.Errorf("window must be >= 2, got %d", c.Window)
	case c.Damping <= 0 || c.Damping >= 1:
		return fmt.Errorf("damping must be in (0,1), got %g", c.Damping)
	case c.Tolerance <= 0:
		return fmt.Errorf("tolerance must be > 0, got %g", c.Tolerance)
	case c.MaxIter <= 0:
		return fmt.Errorf("max_iter must be > 0, got %d", c.MaxIter)
	case c.ShortLength <= 0 || c.LongLength <= c.ShortLength:
		return fmt.Errorf("length thresholds must satisfy 0 < short_length < long_length, got %d/%d", c.ShortLength, c.LongLength)
	case c.ShortTopN <= 0 || c.MediumTopN <= 0 || c.LongTopN <= 0:
		return fmt.Errorf("top-n values must be positive, got %d/%d/%d", c.ShortTopN, c.MediumTopN, c.LongTopN)
	}
	return nil
}

// TopN returns how many keywords to keep for a text of textLen characters.
func (c Config) TopN(textLen int) int {
	switch {
	case textLen < c.ShortLength:
		return c.ShortTopN
	case textLen < c.LongLength:
		return c.MediumTopN
	default:
		return c.LongTopN
	}
}

func (c Config) isStopword(lower string) bool {
	_, ok := c.Stopwords[lower]
	return ok
}

func (c Config) allowsTag(tag string) bool {
	_, ok := c.AllowedTags[tag]
	return ok
}
