package primitives

import (
	"fmt"
	"strings"
)

// Constraint is a predicate over corpus entries. A corpus filtered by a set of
// constraints keeps exactly the entries that satisfy all of them.
//
// The set of constraints is closed: only the types below implement it.
type Constraint interface {
	sealedConstraint()

	// Matches reports whether the entry satisfies the constraint.
	Matches(e *Entry) bool

	// Explain describes why the entry does or does not satisfy the constraint.
	Explain(e *Entry) string

	String() string
}

func matchesAll(cs []Constraint, e *Entry) bool {
	for _, c := range cs {
		if !c.Matches(e) {
			return false
		}
	}
	return true
}

// LengthConstraint accepts entries of exactly N symbols.
type LengthConstraint struct {
	N int
}

func (LengthConstraint) sealedConstraint() {}

func (c LengthConstraint) Matches(e *Entry) bool {
	return e.Len() == c.N
}

func (c LengthConstraint) Explain(e *Entry) string {
	return fmt.Sprintf("%s: %q has length %d", c, e.Word, e.Len())
}

func (c LengthConstraint) String() string {
	return fmt.Sprintf("Length(%d)", c.N)
}

// PositionMatchConstraint accepts entries that agree with Word in exactly
// Count positions.
//
// Word itself is already known not to be the answer unless every position
// matched, so it is rejected when Count < len(Word). When Count == len(Word)
// Word is the only entry accepted.
type PositionMatchConstraint struct {
	Word  string
	Count int
}

func (PositionMatchConstraint) sealedConstraint() {}

func (c PositionMatchConstraint) Matches(e *Entry) bool {
	if c.Count == len(c.Word) {
		return e.Word == c.Word
	}
	if e.Word == c.Word {
		return false
	}
	return e.PositionMatch(c.Word) == c.Count
}

func (c PositionMatchConstraint) Explain(e *Entry) string {
	return fmt.Sprintf("%s: %q matched %d positions", c, e.Word, e.PositionMatch(c.Word))
}

func (c PositionMatchConstraint) String() string {
	return fmt.Sprintf("PositionMatch(%q, %d)", c.Word, c.Count)
}

// CharMatchConstraint accepts entries whose multiset intersection with
// Profile is exactly Count.
type CharMatchConstraint struct {
	Profile CharProfile
	Count   int
}

func (CharMatchConstraint) sealedConstraint() {}

func (c CharMatchConstraint) Matches(e *Entry) bool {
	return e.CharMatch(c.Profile) == c.Count
}

func (c CharMatchConstraint) Explain(e *Entry) string {
	return fmt.Sprintf("%s: %q matched %d characters", c, e.Word, e.CharMatch(c.Profile))
}

func (c CharMatchConstraint) String() string {
	return fmt.Sprintf("CharMatch(%q, %d)", c.Profile.Chars(), c.Count)
}

// CharMatchAtMostConstraint accepts entries whose multiset intersection with
// Profile is at most Count.
type CharMatchAtMostConstraint struct {
	Profile CharProfile
	Count   int
}

func (CharMatchAtMostConstraint) sealedConstraint() {}

func (c CharMatchAtMostConstraint) Matches(e *Entry) bool {
	return e.CharMatch(c.Profile) <= c.Count
}

func (c CharMatchAtMostConstraint) Explain(e *Entry) string {
	return fmt.Sprintf("%s: %q matched %d characters", c, e.Word, e.CharMatch(c.Profile))
}

func (c CharMatchAtMostConstraint) String() string {
	return fmt.Sprintf("CharMatchAtMost(%q, %d)", c.Profile.Chars(), c.Count)
}

// MastermindConstraint accepts entries of the same length as Word that share
// exactly Chars characters and Positions positions with it.
//
// As with PositionMatchConstraint, Word is rejected unless the response was a
// perfect match, in which case it is the only entry accepted.
type MastermindConstraint struct {
	Word      string
	Chars     int
	Positions int
}

func (MastermindConstraint) sealedConstraint() {}

func (c MastermindConstraint) perfect() bool {
	return c.Chars == len(c.Word) && c.Positions == len(c.Word)
}

func (c MastermindConstraint) Matches(e *Entry) bool {
	if c.perfect() {
		return e.Word == c.Word
	}
	if e.Word == c.Word || e.Len() != len(c.Word) {
		return false
	}
	return e.CharMatch(ProfileOf(c.Word)) == c.Chars && e.PositionMatch(c.Word) == c.Positions
}

func (c MastermindConstraint) Explain(e *Entry) string {
	return fmt.Sprintf("%s: %q matched %d characters and %d positions",
		c, e.Word, e.CharMatch(ProfileOf(c.Word)), e.PositionMatch(c.Word))
}

func (c MastermindConstraint) String() string {
	return fmt.Sprintf("Mastermind(%q, chars=%d, positions=%d)", c.Word, c.Chars, c.Positions)
}

// Conjunction accepts entries that satisfy every member.
type Conjunction []Constraint

func (Conjunction) sealedConstraint() {}

func (c Conjunction) Matches(e *Entry) bool {
	return matchesAll(c, e)
}

// Explain lists the members the entry fails.
func (c Conjunction) Explain(e *Entry) string {
	var failed []string
	for _, m := range c {
		if !m.Matches(e) {
			failed = append(failed, m.Explain(e))
		}
	}
	if len(failed) == 0 {
		return fmt.Sprintf("%q satisfies all %d constraints", e.Word, len(c))
	}
	return strings.Join(failed, "; ")
}

func (c Conjunction) String() string {
	parts := make([]string, len(c))
	for i, m := range c {
		parts[i] = m.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
