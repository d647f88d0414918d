package primitives

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var smallWords = []string{"cat", "dog", "ant", "bee"}

func TestNewCorpus(t *testing.T) {
	c := NewCorpus(smallWords)

	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
	if c.MinWordLength() != 3 || c.MaxWordLength() != 3 {
		t.Errorf("lengths = [%d, %d], want [3, 3]", c.MinWordLength(), c.MaxWordLength())
	}
	if got := c.Frequency().Count('e'); got != 1 {
		t.Errorf("Frequency().Count('e') = %d, want 1 (documents, not occurrences)", got)
	}
	if got := c.CharsByFrequency(); got != "taongedcb" {
		t.Errorf("CharsByFrequency() = %q, want %q", got, "taongedcb")
	}
	if diff := cmp.Diff(smallWords, c.Words()); diff != "" {
		t.Errorf("Words() mismatch (-want +got):\n%s", diff)
	}
	if !c.Valid() {
		t.Errorf("Valid() = false, want true")
	}
}

func TestCorpus_WordLengths(t *testing.T) {
	tests := []struct {
		name             string
		words            []string
		wantMin, wantMax int
	}{
		{"empty word first", []string{"", "cat", "to"}, 0, 3},
		{"empty word last", []string{"cat", "to", ""}, 0, 3},
		{"shortest later", []string{"kite", "cat", "dogs"}, 3, 4},
		{"no words", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCorpus(tt.words)
			if c.MinWordLength() != tt.wantMin || c.MaxWordLength() != tt.wantMax {
				t.Errorf("lengths = [%d, %d], want [%d, %d]",
					c.MinWordLength(), c.MaxWordLength(), tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestCorpus_Valid(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  bool
	}{
		{"lowercase", []string{"cat", "dog"}, true},
		{"uppercase", []string{"cat", "Dog"}, false},
		{"digit", []string{"r2d2"}, false},
		{"space", []string{"ice cream"}, false},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCorpus(tt.words).Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorpus_All(t *testing.T) {
	c := NewCorpus(smallWords)

	var got []string
	for e := range c.All() {
		got = append(got, e.Word)
		if e.Word == "ant" {
			break
		}
	}
	if diff := cmp.Diff([]string{"cat", "dog", "ant"}, got); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestCorpus_Filter(t *testing.T) {
	c := NewCorpus(smallWords)

	sub := c.Filter(CharMatchConstraint{Profile: ProfileOf("cat"), Count: 3})
	if diff := cmp.Diff([]string{"cat"}, sub.Words()); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}
	if sub.Entry(0) != c.Entry(0) {
		t.Errorf("Filter() copied the entry instead of sharing it")
	}
	if c.Len() != 4 {
		t.Errorf("Filter() changed the parent: Len() = %d, want 4", c.Len())
	}

	if got := c.Filter(); got.Len() != c.Len() {
		t.Errorf("Filter() with no constraints = %d entries, want %d", got.Len(), c.Len())
	}
}

func TestCorpus_FilterNonEmpty(t *testing.T) {
	c := NewCorpus(smallWords)

	if _, err := c.FilterNonEmpty(LengthConstraint{N: 3}); err != nil {
		t.Errorf("FilterNonEmpty() error = %v, want nil", err)
	}

	_, err := c.FilterNonEmpty(LengthConstraint{N: 4})
	if !errors.Is(err, ErrCorpusExhausted) {
		t.Errorf("FilterNonEmpty() error = %v, want %v", err, ErrCorpusExhausted)
	}

	empty := NewCorpus(nil)
	if _, err := empty.FilterNonEmpty(LengthConstraint{N: 4}); err != nil {
		t.Errorf("FilterNonEmpty() on an empty corpus error = %v, want nil", err)
	}
}

func TestCorpus_BySize(t *testing.T) {
	c := NewCorpus([]string{"a", "to", "cat", "tea", "dogs", "at"})

	tests := []struct {
		n    int
		want []string
	}{
		{1, []string{"a"}},
		{2, []string{"to", "at"}},
		{3, []string{"cat", "tea"}},
		{4, []string{"dogs"}},
		{5, []string{}},
	}

	for _, tt := range tests {
		got := c.BySize(tt.n).Words()
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("BySize(%d) mismatch (-want +got):\n%s", tt.n, diff)
		}
	}

	want := map[int]int{1: 1, 2: 2, 3: 2, 4: 1}
	if diff := cmp.Diff(want, c.SizeDistribution()); diff != "" {
		t.Errorf("SizeDistribution() mismatch (-want +got):\n%s", diff)
	}
}

func TestCorpus_GuessWord(t *testing.T) {
	c := NewCorpus(smallWords)

	tests := []struct {
		name     string
		strategy GuessStrategy
		want     string
	}{
		{"synthetic", GuessSynthetic, "aat"},
		{"widest", GuessWidest, "cat"},
		{"middle", GuessMiddle, "ant"},
		{"unknown strategy", GuessStrategy(7), "ant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.GuessWord(tt.strategy); got != tt.want {
				t.Errorf("GuessWord(%d) = %q, want %q", tt.strategy, got, tt.want)
			}
		})
	}

	if got := NewCorpus(nil).GuessWord(GuessMiddle); got != "" {
		t.Errorf("GuessWord() on an empty corpus = %q, want empty", got)
	}
}

func TestCorpus_Widest(t *testing.T) {
	c := NewCorpus([]string{"bee", "moon", "stack", "knots"})
	if got := c.GuessWord(GuessWidest); got != "stack" {
		t.Errorf("GuessWord(GuessWidest) = %q, want %q", got, "stack")
	}
}

func TestCorpus_SyntheticWord(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  string
	}{
		// Position 1 is a tie between a, e, i and o; the first symbol wins.
		{"tie", []string{"bat", "bit", "cot", "be"}, "bat"},
		{"not in corpus", []string{"bank", "sink", "sand"}, "sank"},
		{"mixed lengths", []string{"to", "tea", "sea", "ten"}, "tea"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCorpus(tt.words).SyntheticWord(); got != tt.want {
				t.Errorf("SyntheticWord() = %q, want %q", got, tt.want)
			}
		})
	}
}
