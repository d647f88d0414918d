package internal

import (
	"context"
	"fmt"
	"math/bits"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"crosswarped.com/phrasefinder/pkg/primitives"
)

// PositionState is what is known about one position of the phrase.
type PositionState int

const (
	Unknown PositionState = iota
	NotSeparator
	Separator
)

func (s PositionState) String() string {
	switch s {
	case NotSeparator:
		return "-"
	case Separator:
		return "S"
	}
	return "?"
}

// exhaustiveThreshold is the largest number of feasible pairs for which
// Partition enumerates every split of the candidate positions.
const exhaustiveThreshold = 8

// ProbeFunc sends a probe to the oracle and returns its response.
type ProbeFunc func(probe string) (positions, characters int)

// Separators are the positions of the two spaces of a phrase.
type Separators struct {
	First, Second int
}

// Lengths returns the three word lengths implied by the separators.
func (s Separators) Lengths(phraseLength int) (int, int, int) {
	return s.First, s.Second - s.First - 1, phraseLength - s.Second - 1
}

// Locator finds the two separators of a phrase of known length by bisecting
// the positions that may still hold one.
type Locator struct {
	minLen, maxLen int

	phraseLen int
	state     []PositionState
	// feasible[i] has bit j set iff (i, j), i < j, may still be the
	// separator pair.
	feasible []*bitset.BitSet
}

// NewLocator returns a Locator for phrases whose words are between minLen and
// maxLen long.
func NewLocator(minLen, maxLen int) *Locator {
	return &Locator{minLen: minLen, maxLen: maxLen}
}

// Initialize resets the locator for a phrase of length phraseLen.
func (l *Locator) Initialize(phraseLen int) error {
	layouts := AllLayouts(LayoutParams{
		PhraseLength:  phraseLen,
		MinWordLength: &l.minLen,
		MaxWordLength: &l.maxLen,
	})
	if len(layouts) == 0 {
		return fmt.Errorf("%w: no layout of %d symbols with words of %d to %d symbols",
			primitives.ErrOracleInconsistency, phraseLen, l.minLen, l.maxLen)
	}

	l.phraseLen = phraseLen
	l.state = make([]PositionState, phraseLen)
	l.feasible = make([]*bitset.BitSet, phraseLen)
	for i := range l.feasible {
		l.feasible[i] = bitset.New(uint(phraseLen))
	}
	for _, layout := range layouts {
		first, second := layout.Separators()
		l.feasible[first].Set(uint(second))
	}
	return l.propagate()
}

// PhraseLength returns the length the locator was initialized with.
func (l *Locator) PhraseLength() int {
	return l.phraseLen
}

// State returns what is known about position i.
func (l *Locator) State(i int) PositionState {
	return l.state[i]
}

// PairCount returns the number of feasible separator pairs.
func (l *Locator) PairCount() int {
	n := 0
	for _, row := range l.feasible {
		n += int(row.Count())
	}
	return n
}

// Pairs returns every feasible separator pair, ordered by first position.
func (l *Locator) Pairs() []Separators {
	var pairs []Separators
	for i, row := range l.feasible {
		for j, ok := row.NextSet(0); ok; j, ok = row.NextSet(j + 1) {
			pairs = append(pairs, Separators{First: i, Second: int(j)})
		}
	}
	return pairs
}

// Pair returns the separator pair once it is the only one left.
func (l *Locator) Pair() (Separators, bool) {
	pairs := l.Pairs()
	if len(pairs) != 1 {
		return Separators{}, false
	}
	return pairs[0], true
}

// Unknowns returns the positions still in the Unknown state.
func (l *Locator) Unknowns() []int {
	var u []int
	for i, s := range l.state {
		if s == Unknown {
			u = append(u, i)
		}
	}
	return u
}

// Probe renders the test pattern: a space at every test position and a
// placeholder everywhere else.
func (l *Locator) Probe(test []int) string {
	b := make([]byte, l.phraseLen)
	for i := range b {
		b[i] = primitives.Placeholder
	}
	for _, i := range test {
		b[i] = primitives.Space
	}
	return string(b)
}

// Absorb applies the number of separators found among the test positions.
// Ignore holds every other position that may still be a separator.
func (l *Locator) Absorb(positions int, test, ignore []int) error {
	switch positions {
	case 0:
		l.markNotSeparator(test)
	case 2:
		l.markNotSeparator(ignore)
	case 1:
		l.clearWithin(test)
		l.clearWithin(ignore)
	default:
		return fmt.Errorf("%w: %d separators among %d test positions",
			primitives.ErrOracleInconsistency, positions, len(test))
	}
	return l.propagate()
}

func (l *Locator) markNotSeparator(ps []int) {
	for _, p := range ps {
		l.state[p] = NotSeparator
	}
}

func (l *Locator) clearWithin(ps []int) {
	for a, i := range ps {
		for _, j := range ps[a+1:] {
			lo, hi := min(i, j), max(i, j)
			l.feasible[lo].Clear(uint(hi))
		}
	}
}

// propagate drops the pairs that touch a NotSeparator position and marks every
// Unknown position left without a pair as NotSeparator.
func (l *Locator) propagate() error {
	for p, s := range l.state {
		if s != NotSeparator {
			continue
		}
		l.feasible[p].ClearAll()
		for i := 0; i < p; i++ {
			l.feasible[i].Clear(uint(p))
		}
	}

	inPair := make([]bool, l.phraseLen)
	pairs := l.Pairs()
	for _, pair := range pairs {
		inPair[pair.First] = true
		inPair[pair.Second] = true
	}
	for p, s := range l.state {
		if s == Unknown && !inPair[p] {
			l.state[p] = NotSeparator
		}
	}

	switch len(pairs) {
	case 0:
		return fmt.Errorf("%w: no separator pair is left", primitives.ErrOracleInconsistency)
	case 1:
		l.state[pairs[0].First] = Separator
		l.state[pairs[0].Second] = Separator
	}
	return nil
}

// Partition splits the Unknown positions into a test group and an ignore
// group, choosing the split whose three possible answers best divide the
// feasible pairs.
func (l *Locator) Partition() (test, ignore []int) {
	unknowns := l.Unknowns()
	pairs := l.Pairs()

	var best []int
	if len(pairs) <= exhaustiveThreshold {
		best = exhaustiveSplit(unknowns, pairs)
	} else {
		best = greedySplit(unknowns, pairs)
	}
	if splitScore(best, pairs) == 0 {
		best = fallbackSplit(unknowns, pairs)
	}

	for _, p := range unknowns {
		if !slices.Contains(best, p) {
			ignore = append(ignore, p)
		}
	}
	return best, ignore
}

// splitScore rates a test group by how evenly the feasible pairs fall into
// the 0, 1 and 2 answers.
func splitScore(test []int, pairs []Separators) int64 {
	var c [3]int64
	for _, pair := range pairs {
		n := 0
		if slices.Contains(test, pair.First) {
			n++
		}
		if slices.Contains(test, pair.Second) {
			n++
		}
		c[n]++
	}
	return c[0]*(c[1]+c[2]) + c[1]*(c[0]+c[2]) + c[2]*(c[0]+c[1])
}

func exhaustiveSplit(unknowns []int, pairs []Separators) []int {
	index := make(map[int]int, len(unknowns))
	for i, p := range unknowns {
		index[p] = i
	}

	var best uint64
	bestScore := int64(-1)
	for mask := uint64(0); mask < 1<<len(unknowns); mask++ {
		var c [3]int64
		for _, pair := range pairs {
			n := 0
			if mask&(1<<index[pair.First]) != 0 {
				n++
			}
			if mask&(1<<index[pair.Second]) != 0 {
				n++
			}
			c[n]++
		}
		score := c[0]*(c[1]+c[2]) + c[1]*(c[0]+c[2]) + c[2]*(c[0]+c[1])
		if score > bestScore {
			best, bestScore = mask, score
		}
	}

	test := make([]int, 0, bits.OnesCount64(best))
	for i, p := range unknowns {
		if best&(1<<i) != 0 {
			test = append(test, p)
		}
	}
	return test
}

// greedySplit tries alternating blocks of every size up to half the unknown
// positions and keeps the best scoring one.
func greedySplit(unknowns []int, pairs []Separators) []int {
	var best []int
	bestScore := int64(-1)
	for block := 1; block <= max(len(unknowns)/2, 1); block++ {
		var test []int
		for i, p := range unknowns {
			if (i/block)%2 == 0 {
				test = append(test, p)
			}
		}
		if score := splitScore(test, pairs); score > bestScore {
			best, bestScore = test, score
		}
	}
	return best
}

// fallbackSplit returns a single position that is part of some but not all
// feasible pairs.
func fallbackSplit(unknowns []int, pairs []Separators) []int {
	for _, p := range unknowns {
		n := 0
		for _, pair := range pairs {
			if pair.First == p || pair.Second == p {
				n++
			}
		}
		if n > 0 && n < len(pairs) {
			return []int{p}
		}
	}
	return nil
}

// Find probes the oracle until a single separator pair is left. Every probe
// carries the synthesizer's next combination as padding, and the count it
// yields is fed back to the synthesizer.
func (l *Locator) Find(ctx context.Context, probe ProbeFunc, syn *Synthesizer) (Separators, []primitives.Constraint, error) {
	for l.PairCount() > 1 {
		if err := ctx.Err(); err != nil {
			return Separators{}, nil, err
		}

		test, ignore := l.Partition()
		combo := syn.Next()
		p := l.Probe(test) + strings.Repeat(combo, l.phraseLen) + "  "

		positions, characters := probe(p)
		if err := l.Absorb(positions, test, ignore); err != nil {
			return Separators{}, nil, err
		}
		if combo != "" {
			if err := syn.Observe(combo, characters-2); err != nil {
				return Separators{}, nil, err
			}
		}
	}

	pair, ok := l.Pair()
	if !ok {
		return Separators{}, nil, fmt.Errorf("%w: no separator pair is left", primitives.ErrOracleInconsistency)
	}
	return pair, syn.WordConstraints(), nil
}

func (l *Locator) String() string {
	var sb strings.Builder
	for _, s := range l.state {
		sb.WriteString(s.String())
	}
	fmt.Fprintf(&sb, " (%d pairs)", l.PairCount())
	return sb.String()
}
