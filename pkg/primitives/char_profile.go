package primitives

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// Space separates the words of a phrase.
	Space = ' '
	// Placeholder fills probe positions that should never match the secret.
	Placeholder = '.'
)

// NumSymbols is the number of distinct symbols a CharProfile tracks: the 26
// lowercase letters, the space, and the placeholder.
const NumSymbols = 28

const (
	spaceIndex       = 26
	placeholderIndex = 27
)

// SymbolIndex returns the profile slot for the given byte.
func SymbolIndex(c byte) (int, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	case c == Space:
		return spaceIndex, true
	case c == Placeholder:
		return placeholderIndex, true
	}
	return 0, false
}

// SymbolAt is the inverse of SymbolIndex.
func SymbolAt(i int) byte {
	switch i {
	case spaceIndex:
		return Space
	case placeholderIndex:
		return Placeholder
	}
	return byte('a' + i)
}

// CharProfile is a multiset of symbol counts. It is a value type; copying a
// CharProfile copies its counts.
type CharProfile [NumSymbols]int

// ProfileOf returns the profile of a word. Bytes outside the symbol alphabet
// are not counted.
func ProfileOf(word string) CharProfile {
	var p CharProfile
	p.AddWord(word)
	return p
}

// AddWord adds the symbols of word to the profile.
func (p *CharProfile) AddWord(word string) {
	for i := 0; i < len(word); i++ {
		if idx, ok := SymbolIndex(word[i]); ok {
			p[idx]++
		}
	}
}

// Add adds every count of other to the profile.
func (p *CharProfile) Add(other CharProfile) {
	for i := range p {
		p[i] += other[i]
	}
}

// Count returns the count of a single symbol.
func (p CharProfile) Count(c byte) int {
	idx, ok := SymbolIndex(c)
	if !ok {
		return 0
	}
	return p[idx]
}

// Match returns the size of the multiset intersection of the two profiles.
func (p CharProfile) Match(other CharProfile) int {
	m := 0
	for i := range p {
		m += min(p[i], other[i])
	}
	return m
}

// Size is the total number of symbols in the profile.
func (p CharProfile) Size() int {
	n := 0
	for _, c := range p {
		n += c
	}
	return n
}

// UniqueCount is the number of symbols with a non-zero count.
func (p CharProfile) UniqueCount() int {
	n := 0
	for _, c := range p {
		if c > 0 {
			n++
		}
	}
	return n
}

// IsEmpty reports whether every count is zero.
func (p CharProfile) IsEmpty() bool {
	return p == CharProfile{}
}

// IsSubSet reports whether p is contained in other, count by count.
func (p CharProfile) IsSubSet(other CharProfile) bool {
	for i := range p {
		if p[i] > other[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both profiles hold the same counts.
func (p CharProfile) Equal(other CharProfile) bool {
	return p == other
}

// Remove returns p minus other, clipped at zero.
func (p CharProfile) Remove(other CharProfile) CharProfile {
	var r CharProfile
	for i := range p {
		r[i] = max(p[i]-other[i], 0)
	}
	return r
}

// Distinct returns the profile with every present symbol clipped to one.
func (p CharProfile) Distinct() CharProfile {
	var r CharProfile
	for i, c := range p {
		if c > 0 {
			r[i] = 1
		}
	}
	return r
}

// Scale returns the profile with every present symbol set to n.
func (p CharProfile) Scale(n int) CharProfile {
	var r CharProfile
	for i, c := range p {
		if c > 0 {
			r[i] = n
		}
	}
	return r
}

// Chars renders the profile in symbol order, each symbol repeated by its count.
func (p CharProfile) Chars() string {
	var sb strings.Builder
	for i, c := range p {
		for range c {
			sb.WriteByte(SymbolAt(i))
		}
	}
	return sb.String()
}

// CharsByFrequency returns each present symbol once, most frequent first.
// Equal counts are ordered by descending symbol.
func (p CharProfile) CharsByFrequency() string {
	type symbolCount struct {
		count  int
		symbol byte
	}
	var counts []symbolCount
	for i, c := range p {
		if c > 0 {
			counts = append(counts, symbolCount{count: c, symbol: SymbolAt(i)})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].symbol > counts[j].symbol
	})

	b := make([]byte, len(counts))
	for i, sc := range counts {
		b[i] = sc.symbol
	}
	return string(b)
}

func (p CharProfile) String() string {
	var parts []string
	for i, c := range p {
		if c > 0 {
			parts = append(parts, fmt.Sprintf("%q:%d", SymbolAt(i), c))
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}
