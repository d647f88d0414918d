package primitives

// GuessHistoryElement is one probe and the oracle's response to it.
type GuessHistoryElement struct {
	Probe      string
	Profile    CharProfile
	Positions  int
	Characters int
}

// PhraseMatch reports whether candidate, had it been the secret, would have
// produced the recorded response.
func (g GuessHistoryElement) PhraseMatch(candidate string) bool {
	return g.phraseMatch(ProfileOf(candidate), candidate)
}

func (g GuessHistoryElement) phraseMatch(profile CharProfile, candidate string) bool {
	if g.Profile.Match(profile) != g.Characters {
		return false
	}
	positions := 0
	for i := 0; i < len(candidate) && i < len(g.Probe); i++ {
		if candidate[i] == g.Probe[i] {
			positions++
		}
	}
	return positions == g.Positions
}

// SubPhraseMatch reports whether a part of the secret with the given profile
// is consistent with the recorded character count.
func (g GuessHistoryElement) SubPhraseMatch(profile CharProfile) bool {
	return g.Profile.Match(profile) <= g.Characters
}

// GuessHistory is the append-only log of a solve session.
type GuessHistory struct {
	elements []GuessHistoryElement
}

// Record appends a probe and its response.
func (h *GuessHistory) Record(probe string, positions, characters int) GuessHistoryElement {
	g := GuessHistoryElement{
		Probe:      probe,
		Profile:    ProfileOf(probe),
		Positions:  positions,
		Characters: characters,
	}
	h.elements = append(h.elements, g)
	return g
}

// Len returns the number of recorded probes.
func (h *GuessHistory) Len() int {
	return len(h.elements)
}

// Elements returns the recorded probes in order. The slice must not be
// modified.
func (h *GuessHistory) Elements() []GuessHistoryElement {
	return h.elements
}

// Consistent reports whether candidate agrees with every recorded response.
func (h *GuessHistory) Consistent(candidate string) bool {
	profile := ProfileOf(candidate)
	for _, g := range h.elements {
		if !g.phraseMatch(profile, candidate) {
			return false
		}
	}
	return true
}

// WordConstraints returns, for every recorded probe, the upper bound it puts
// on the characters of any single word of the secret.
func (h *GuessHistory) WordConstraints() []Constraint {
	cs := make([]Constraint, 0, len(h.elements))
	for _, g := range h.elements {
		cs = append(cs, CharMatchAtMostConstraint{Profile: g.Profile, Count: g.Characters})
	}
	return cs
}

// ResidualConstraints derives constraints on the remainder of the secret once
// known, its leading part, is fixed.
//
// For every probe the characters explained by known are subtracted from the
// response; the probe characters that known does not account for must then
// match the remainder exactly the number of times still unexplained.
func (h *GuessHistory) ResidualConstraints(known string) []Constraint {
	base := ProfileOf(known)

	var cs []Constraint
	for _, g := range h.elements {
		explained := g.Profile.Match(base)
		pending := g.Profile.Remove(base)
		if pending.IsEmpty() {
			continue
		}
		cs = append(cs, CharMatchConstraint{Profile: pending, Count: g.Characters - explained})
	}
	return cs
}
