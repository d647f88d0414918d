package phrasefinder

import (
	"fmt"
	"strings"

	"crosswarped.com/phrasefinder/pkg/primitives"
)

// Oracle answers match queries about a hidden phrase.
type Oracle interface {
	// Match returns the number of index-aligned equal symbols over the
	// overlapping length of candidate and the phrase, the size of the multiset
	// intersection of their symbols, and whether every symbol of candidate was
	// aligned.
	Match(candidate string) (positions, characters int, exact bool)
}

// Secret is an in-process Oracle for a known phrase.
type Secret struct {
	phrase  string
	profile primitives.CharProfile
}

var _ Oracle = (*Secret)(nil)

// NewSecret returns an oracle hiding phrase.
func NewSecret(phrase string) *Secret {
	return &Secret{
		phrase:  phrase,
		profile: primitives.ProfileOf(phrase),
	}
}

func (s *Secret) Match(candidate string) (positions, characters int, exact bool) {
	for i := 0; i < len(candidate) && i < len(s.phrase); i++ {
		if candidate[i] == s.phrase[i] {
			positions++
		}
	}
	characters = s.profile.Match(primitives.ProfileOf(candidate))
	return positions, characters, positions == len(candidate)
}

// Len returns the length of the hidden phrase.
func (s *Secret) Len() int {
	return len(s.phrase)
}

// DebugString reveals the phrase.
func (s *Secret) DebugString() string {
	return fmt.Sprintf("Secret{%q, words: %q}", s.phrase, strings.Fields(s.phrase))
}
