package internal

import (
	"fmt"
	"strings"

	"crosswarped.com/phrasefinder/pkg/primitives"
)

// lastCombo is the highest counter Combo returns a combination for.
const lastCombo = 16

type fact struct {
	set   primitives.CharProfile
	count int
}

func (f fact) String() string {
	return fmt.Sprintf("%s=%d", f.set.Chars(), f.count)
}

// Synthesizer produces the symbol combinations appended to probes whose own
// purpose leaves oracle characters unused, and reduces the counts those
// combinations yield into facts about the phrase.
//
// Every fact is a symbol set and the total number of occurrences of those
// symbols in the phrase. Facts never describe the same set, and a fact whose
// set contains another's is split into the contained fact and the difference.
type Synthesizer struct {
	dictFreq  string
	testCases [8]string

	facts   []fact
	zero    primitives.CharProfile
	counter int

	// observed maps every symbol set passed to Observe, before and after
	// removing the zero symbols, to its count.
	observed map[primitives.CharProfile]int
}

// NewSynthesizer prepares the combinations for a corpus.
func NewSynthesizer(corpus *primitives.Corpus) *Synthesizer {
	s := &Synthesizer{
		dictFreq: corpus.CharsByFrequency(),
		observed: make(map[primitives.CharProfile]int),
	}

	freq := corpus.Frequency()
	total := 0
	cumulative := make([]int, len(s.dictFreq))
	for i := 0; i < len(s.dictFreq); i++ {
		total += freq.Count(s.dictFreq[i])
		cumulative[i] = total
	}

	q1, q2, q3 := -1, -1, -1
	for i, c := range cumulative {
		if q1 == -1 && c > total/4 {
			q1 = i
		}
		if q2 == -1 && c > total/2 {
			q2 = i
		}
		if q3 == -1 && c > total*3/4 {
			q3 = i
		}
	}
	if q2 == q1 {
		q2++
		q3 += 2
	} else if q3 == q2 {
		q3++
	}
	n := len(s.dictFreq)
	q1, q2, q3 = min(max(q1, 0), n), min(max(q2, 0), n), min(max(q3, 0), n)

	var alternate, pairs, top, middle strings.Builder
	for i := 0; i < n; i++ {
		c := s.dictFreq[i]
		if i%2 == 0 {
			alternate.WriteByte(c)
		}
		if i%4 < 2 {
			pairs.WriteByte(c)
		}
		if i < q2 {
			top.WriteByte(c)
		}
		if i >= q1 && i < q3 {
			middle.WriteByte(c)
		}
	}

	s.testCases[0] = s.dictFreq
	s.testCases[1] = alternate.String()
	s.testCases[2] = pairs.String()
	s.testCases[3] = intersect(s.testCases[1], s.testCases[2])
	s.testCases[5] = top.String()
	s.testCases[6] = middle.String()
	s.testCases[7] = intersect(s.testCases[5], s.testCases[6])
	return s
}

func intersect(a, b string) string {
	var sb strings.Builder
	for i := 0; i < len(a); i++ {
		if strings.IndexByte(b, a[i]) >= 0 {
			sb.WriteByte(a[i])
		}
	}
	return sb.String()
}

// Combo returns the combination for the given counter, or the empty string
// once the combinations are used up.
func (s *Synthesizer) Combo(counter int) string {
	switch {
	case counter == 4:
		return s.splitSmallestFact()
	case counter >= 0 && counter < len(s.testCases):
		return s.testCases[counter]
	case counter >= 8 && counter <= 11:
		return s.symbolsAt(5-(counter-8), 10-(counter-8), 15-(counter-8), 20-(counter-8), 25-(counter-8))
	case counter >= 12 && counter <= lastCombo:
		return s.symbolsAt(1 + 5*(counter-12))
	}
	return ""
}

func (s *Synthesizer) symbolsAt(indices ...int) string {
	var sb strings.Builder
	for _, i := range indices {
		if i < len(s.dictFreq) {
			sb.WriteByte(s.dictFreq[i])
		}
	}
	return sb.String()
}

// splitSmallestFact returns half of the multi-symbol fact with the lowest
// count.
func (s *Synthesizer) splitSmallestFact() string {
	var smallest *fact
	for i := range s.facts {
		f := &s.facts[i]
		if f.set.UniqueCount() < 2 {
			continue
		}
		if smallest == nil || f.count < smallest.count {
			smallest = f
		}
	}
	if smallest == nil {
		return ""
	}
	chars := smallest.set.Chars()
	return chars[:len(chars)/2]
}

// Next advances to and returns the next combination. The first combination,
// every symbol of the corpus, is skipped: its count is known from the length
// probe.
func (s *Synthesizer) Next() string {
	s.counter++
	return s.Combo(s.counter)
}

// Observe records that the phrase holds count occurrences of the given
// symbols in total, and reduces the stored facts until none contains another.
//
// Observing a symbol set again is a no-op when the count agrees and an
// inconsistency when it does not.
func (s *Synthesizer) Observe(symbols string, count int) error {
	set := primitives.ProfileOf(symbols).Distinct()
	keys := []primitives.CharProfile{set, set.Remove(s.zero)}
	for _, k := range keys {
		if k.IsEmpty() {
			continue
		}
		if prev, ok := s.observed[k]; ok {
			if prev != count {
				return fmt.Errorf("%w: %s was observed with count %d",
					primitives.ErrOracleInconsistency, fact{set: k, count: count}, prev)
			}
			return nil
		}
	}

	queue := []fact{{set: set, count: count}}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		if f.count < 0 {
			return fmt.Errorf("%w: %s has a negative count", primitives.ErrOracleInconsistency, f)
		}

		if f.count == 0 {
			newZero := f.set.Remove(s.zero)
			if newZero.IsEmpty() {
				continue
			}
			s.zero.Add(newZero)
			queue = append(queue, s.facts...)
			s.facts = nil
			continue
		}

		f.set = f.set.Remove(s.zero)
		if f.set.IsEmpty() {
			return fmt.Errorf("%w: %d occurrences of symbols known to be absent",
				primitives.ErrOracleInconsistency, f.count)
		}

		derived, err := s.reduce(f)
		if err != nil {
			return err
		}
		queue = append(queue, derived...)
	}

	for _, k := range append(keys, set.Remove(s.zero)) {
		if !k.IsEmpty() {
			s.observed[k] = count
		}
	}
	return nil
}

// reduce stores f unless a stored fact already covers it, and returns the
// facts derived by difference.
func (s *Synthesizer) reduce(f fact) ([]fact, error) {
	for _, t := range s.facts {
		if t.set == f.set {
			if t.count != f.count {
				return nil, fmt.Errorf("%w: %s conflicts with %s", primitives.ErrOracleInconsistency, f, t)
			}
			return nil, nil
		}
	}
	for _, t := range s.facts {
		if t.set.IsSubSet(f.set) {
			return []fact{{set: f.set.Remove(t.set), count: f.count - t.count}}, nil
		}
	}

	var derived []fact
	kept := make([]fact, 0, len(s.facts)+1)
	for _, t := range s.facts {
		if f.set.IsSubSet(t.set) {
			derived = append(derived, fact{set: t.set.Remove(f.set), count: t.count - f.count})
			continue
		}
		kept = append(kept, t)
	}
	s.facts = append(kept, f)
	return derived, nil
}

// WordConstraints bounds the symbols of any single word of the phrase.
func (s *Synthesizer) WordConstraints() []primitives.Constraint {
	var cs []primitives.Constraint
	if !s.zero.IsEmpty() {
		cs = append(cs, primitives.CharMatchAtMostConstraint{Profile: s.zero.Distinct(), Count: 0})
	}
	for _, f := range s.facts {
		cs = append(cs, primitives.CharMatchAtMostConstraint{Profile: f.set.Scale(f.count), Count: f.count})
	}
	return cs
}

// PhraseConstraints pins the symbol counts of the whole phrase.
func (s *Synthesizer) PhraseConstraints() []primitives.Constraint {
	cs := make([]primitives.Constraint, 0, len(s.facts)+1)
	if !s.zero.IsEmpty() {
		cs = append(cs, primitives.CharMatchConstraint{Profile: s.zero.Distinct(), Count: 0})
	}
	for _, f := range s.facts {
		cs = append(cs, primitives.CharMatchConstraint{Profile: f.set.Scale(f.count), Count: f.count})
	}
	return cs
}

// Facts returns the stored facts as symbol sets mapped to their counts.
func (s *Synthesizer) Facts() map[string]int {
	m := make(map[string]int, len(s.facts))
	for _, f := range s.facts {
		m[f.set.Chars()] = f.count
	}
	return m
}

// Zero returns the symbols known not to occur in the phrase.
func (s *Synthesizer) Zero() string {
	return s.zero.Chars()
}

func (s *Synthesizer) String() string {
	parts := make([]string, 0, len(s.facts)+1)
	if !s.zero.IsEmpty() {
		parts = append(parts, fact{set: s.zero}.String())
	}
	for _, f := range s.facts {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, " ")
}
