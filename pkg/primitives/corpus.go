package primitives

import (
	"fmt"
	"iter"
)

// Entry is a word plus the metrics derived from it. Entries are created once
// by the corpus that loads them and are shared, read-only, by every corpus
// filtered from it.
type Entry struct {
	Word    string
	Profile CharProfile
	Unique  int
}

func newEntry(word string) *Entry {
	p := ProfileOf(word)
	return &Entry{
		Word:    word,
		Profile: p,
		Unique:  p.UniqueCount(),
	}
}

// Len returns the word length.
func (e *Entry) Len() int {
	return len(e.Word)
}

// PositionMatch counts the positions where word and the entry agree, over
// their overlapping length.
func (e *Entry) PositionMatch(word string) int {
	m := 0
	for i := 0; i < len(word) && i < len(e.Word); i++ {
		if word[i] == e.Word[i] {
			m++
		}
	}
	return m
}

// CharMatch returns the multiset intersection size with the given profile.
func (e *Entry) CharMatch(p CharProfile) int {
	return e.Profile.Match(p)
}

// Valid reports whether the word consists only of lowercase letters.
func (e *Entry) Valid() bool {
	for i := 0; i < len(e.Word); i++ {
		if e.Word[i] < 'a' || e.Word[i] > 'z' {
			return false
		}
	}
	return true
}

// GuessStrategy selects how Corpus.GuessWord picks a word.
type GuessStrategy int

const (
	// GuessSynthetic builds the most frequent symbol per position.
	GuessSynthetic GuessStrategy = iota
	// GuessWidest returns the entry with the most unique symbols.
	GuessWidest
	// GuessMiddle returns the middle entry in insertion order.
	GuessMiddle
)

// Corpus is an ordered collection of entries with aggregate statistics.
//
// A Corpus is only mutated by the code that loads it. Filtering never changes
// the receiver; it returns a new Corpus that references a subset of the same
// entries.
type Corpus struct {
	entries []*Entry

	maxLen int
	minLen int
	// freq counts, per symbol, the entries that contain it.
	freq   CharProfile
	widest *Entry
}

// NewCorpus loads a corpus from a list of words.
func NewCorpus(words []string) *Corpus {
	c := &Corpus{entries: make([]*Entry, 0, len(words))}
	for _, w := range words {
		c.Add(w)
	}
	return c
}

// Add appends a new word to the corpus.
func (c *Corpus) Add(word string) {
	c.addEntry(newEntry(word))
}

func (c *Corpus) addEntry(e *Entry) {
	c.entries = append(c.entries, e)
	if e.Len() > c.maxLen {
		c.maxLen = e.Len()
	}
	if len(c.entries) == 1 || e.Len() < c.minLen {
		c.minLen = e.Len()
	}
	if c.widest == nil || e.Unique > c.widest.Unique {
		c.widest = e
	}
	for i, n := range e.Profile {
		if n > 0 {
			c.freq[i]++
		}
	}
}

// Len returns the number of entries.
func (c *Corpus) Len() int {
	return len(c.entries)
}

// Entry returns the i'th entry.
func (c *Corpus) Entry(i int) *Entry {
	return c.entries[i]
}

// Word returns the i'th word.
func (c *Corpus) Word(i int) string {
	return c.entries[i].Word
}

// All iterates over the entries in insertion order.
func (c *Corpus) All() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range c.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Words returns a copy of every word in insertion order.
func (c *Corpus) Words() []string {
	words := make([]string, len(c.entries))
	for i, e := range c.entries {
		words[i] = e.Word
	}
	return words
}

// MaxWordLength returns the length of the longest word.
func (c *Corpus) MaxWordLength() int {
	return c.maxLen
}

// MinWordLength returns the length of the shortest word.
func (c *Corpus) MinWordLength() int {
	return c.minLen
}

// Frequency returns, for each symbol, the number of entries containing it.
func (c *Corpus) Frequency() CharProfile {
	return c.freq
}

// CharsByFrequency returns the symbols used by the corpus, ordered by the
// number of entries that contain them.
func (c *Corpus) CharsByFrequency() string {
	return c.freq.CharsByFrequency()
}

// Valid reports whether every word consists of lowercase letters only.
func (c *Corpus) Valid() bool {
	for _, e := range c.entries {
		if !e.Valid() {
			return false
		}
	}
	return true
}

// SizeDistribution returns the number of words of each length.
func (c *Corpus) SizeDistribution() map[int]int {
	dist := make(map[int]int)
	for _, e := range c.entries {
		dist[e.Len()]++
	}
	return dist
}

// Filter returns the corpus of entries that satisfy every constraint.
func (c *Corpus) Filter(cs ...Constraint) *Corpus {
	sub := &Corpus{}
	for _, e := range c.entries {
		if matchesAll(cs, e) {
			sub.addEntry(e)
		}
	}
	return sub
}

// FilterNonEmpty is like Filter, but reports ErrCorpusExhausted when a
// non-empty corpus is filtered down to nothing.
func (c *Corpus) FilterNonEmpty(cs ...Constraint) (*Corpus, error) {
	sub := c.Filter(cs...)
	if sub.Len() == 0 && c.Len() > 0 {
		return nil, fmt.Errorf("%w: %d entries filtered by %s", ErrCorpusExhausted, c.Len(), Conjunction(cs))
	}
	return sub, nil
}

// BySize returns the entries of exactly length n.
func (c *Corpus) BySize(n int) *Corpus {
	return c.Filter(LengthConstraint{N: n})
}

// GuessWord returns a word to probe with, according to strategy.
func (c *Corpus) GuessWord(strategy GuessStrategy) string {
	if len(c.entries) == 0 {
		return ""
	}
	switch strategy {
	case GuessSynthetic:
		return c.SyntheticWord()
	case GuessWidest:
		return c.widest.Word
	default:
		return c.entries[len(c.entries)/2].Word
	}
}

// SyntheticWord builds a word, not necessarily in the corpus, from the most
// frequent symbol at each position. On ties the lowest symbol wins.
func (c *Corpus) SyntheticWord() string {
	if c.maxLen == 0 {
		return ""
	}
	byPosition := make([]CharProfile, c.maxLen)
	for _, e := range c.entries {
		for i := 0; i < e.Len(); i++ {
			if idx, ok := SymbolIndex(e.Word[i]); ok {
				byPosition[i][idx]++
			}
		}
	}

	word := make([]byte, c.maxLen)
	for i, counts := range byPosition {
		var best byte = Placeholder
		bestCount := 0
		for j, n := range counts {
			if n > bestCount {
				best, bestCount = SymbolAt(j), n
			}
		}
		word[i] = best
	}
	return string(word)
}

func (c *Corpus) String() string {
	return fmt.Sprintf("Corpus{len: %d, minLen: %d, maxLen: %d}", c.Len(), c.minLen, c.maxLen)
}
