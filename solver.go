package phrasefinder

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"crosswarped.com/phrasefinder/internal"
	"crosswarped.com/phrasefinder/pkg/primitives"
	"crosswarped.com/phrasefinder/pkg/stats"
)

var (
	ErrCorpusExhausted     = primitives.ErrCorpusExhausted
	ErrOracleInconsistency = primitives.ErrOracleInconsistency
)

// syntheticPhraseThreshold is the phrase corpus size above which the first
// elimination probe is a synthetic phrase rather than a candidate.
const syntheticPhraseThreshold = 50

type SolverParams struct {
	Logger *zap.Logger
	// Confirm spends one more probe on a phrase that elimination resolved
	// without an exact answer.
	Confirm bool
}

// Solver recovers three-word phrases made of words from a corpus. A Solver
// holds no per-phrase state and may run any number of sessions concurrently.
type Solver struct {
	corpus *primitives.Corpus
	params SolverParams
	logger *zap.Logger
}

func NewSolver(corpus *primitives.Corpus, params SolverParams) *Solver {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{
		corpus: corpus,
		params: params,
		logger: logger,
	}
}

// Result is the outcome of a successful solve.
type Result struct {
	Phrase     string
	Separators internal.Separators
	Trace      *stats.Trace
}

// Probes returns the number of probes the solve needed, not counting
// confirmation.
func (r Result) Probes() int {
	return r.Trace.Total()
}

// session is the state of one solve. It is discarded when the solve ends.
type session struct {
	*Solver

	oracle Oracle
	logger *zap.Logger
	hist   primitives.GuessHistory
	trace  *stats.Trace
	syn    *internal.Synthesizer

	phraseLen int
}

func (s *session) probe(phase stats.Phase, p string) (positions, characters int, exact bool) {
	positions, characters, exact = s.oracle.Match(p)
	s.hist.Record(p, positions, characters)
	s.trace.AddProbe(phase)
	s.logger.Debug("probe",
		zap.Stringer("phase", phase),
		zap.String("probe", p),
		zap.Int("positions", positions),
		zap.Int("characters", characters),
		zap.Bool("exact", exact),
	)
	return positions, characters, exact
}

// Solve recovers the phrase hidden by oracle. The returned trace is filled in
// even when the solve fails.
func (s *Solver) Solve(ctx context.Context, oracle Oracle) (Result, error) {
	sess := &session{
		Solver: s,
		oracle: oracle,
		logger: s.logger,
		trace:  stats.NewTrace(),
	}
	res, err := sess.solve(ctx)
	res.Trace = sess.trace
	if err != nil {
		sess.logger.Debug("solve failed", zap.Error(err), zap.Int("probes", sess.hist.Len()))
		return res, err
	}
	sess.logger.Debug("solved", zap.String("phrase", res.Phrase), zap.Stringer("trace", sess.trace))
	return res, nil
}

func (s *session) solve(ctx context.Context) (Result, error) {
	if s.corpus.Len() == 0 {
		return Result{}, fmt.Errorf("%w: empty corpus", ErrCorpusExhausted)
	}

	if err := s.findLength(); err != nil {
		return Result{}, err
	}
	s.logger = s.logger.With(zap.Int("length", s.phraseLen))

	locator := internal.NewLocator(s.corpus.MinWordLength(), s.corpus.MaxWordLength())
	if err := locator.Initialize(s.phraseLen); err != nil {
		return Result{}, err
	}
	seps, cs, err := locator.Find(ctx, func(p string) (int, int) {
		positions, characters, _ := s.probe(stats.PhaseSpaces, p)
		return positions, characters
	}, s.syn)
	if err != nil {
		return Result{}, fmt.Errorf("locating separators: %w", err)
	}
	s.logger.Debug("separators found",
		zap.Int("first", seps.First),
		zap.Int("second", seps.Second),
		zap.Stringer("facts", s.syn),
	)

	cs = append(cs, s.hist.WordConstraints()...)
	reduced, err := s.corpus.FilterNonEmpty(cs...)
	if err != nil {
		return Result{}, fmt.Errorf("reducing corpus: %w", err)
	}
	s.trace.RecordSize(stats.SlotReduced, 0, reduced.Len())

	slots, err := s.resolveWords(ctx, reduced, seps)
	if err != nil {
		return Result{}, err
	}

	phrases, err := s.assemble(slots)
	if err != nil {
		return Result{}, err
	}

	phase := stats.PhasePhrase
	if slots[0].Len() == 1 && slots[1].Len() == 1 {
		phase = stats.PhaseWord3
	}
	phrase, exact, err := s.eliminate(ctx, phase, phrases)
	if err != nil {
		return Result{}, err
	}

	if s.params.Confirm && !exact {
		positions, _, ok := s.probe(stats.PhaseConfirm, phrase)
		if !ok || positions != s.phraseLen {
			return Result{}, fmt.Errorf("%w: %q was not confirmed", ErrOracleInconsistency, phrase)
		}
	}
	return Result{Phrase: phrase, Separators: seps}, nil
}

// findLength sends every corpus symbol with two spaces. The character count is
// the phrase length and the position count is the number of occurrences of
// the most frequent symbol.
func (s *session) findLength() error {
	minLen, maxLen := s.corpus.MinWordLength(), s.corpus.MaxWordLength()
	freq := s.corpus.CharsByFrequency()
	if freq == "" {
		return fmt.Errorf("%w: corpus has no symbols", ErrCorpusExhausted)
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(freq[:1], 3*maxLen+2))
	for i := 1; i < len(freq); i++ {
		sb.WriteString(strings.Repeat(freq[i:i+1], 3*maxLen))
	}
	sb.WriteString("  ")

	positions, characters, _ := s.probe(stats.PhaseLength, sb.String())
	if characters < 3*minLen+2 || characters > 3*maxLen+2 {
		return fmt.Errorf("%w: phrase length %d outside [%d, %d]",
			ErrOracleInconsistency, characters, 3*minLen+2, 3*maxLen+2)
	}
	s.phraseLen = characters

	s.syn = internal.NewSynthesizer(s.corpus)
	if err := s.syn.Observe(freq[:1], positions); err != nil {
		return err
	}
	return s.syn.Observe(freq, characters-2)
}

// resolveWords narrows the candidates of each word slot. The first two slots
// are probed directly; the third is left to assembly.
func (s *session) resolveWords(ctx context.Context, reduced *primitives.Corpus, seps internal.Separators) ([3]*primitives.Corpus, error) {
	var slots [3]*primitives.Corpus
	len1, len2, len3 := seps.Lengths(s.phraseLen)
	offsets := [3]int{0, seps.First + 1, seps.Second + 1}
	for i, n := range []int{len1, len2, len3} {
		slots[i] = reduced.BySize(n)
		if slots[i].Len() == 0 {
			return slots, fmt.Errorf("%w: no word of length %d for slot %d", ErrCorpusExhausted, n, i+1)
		}
	}

	for slot, phase := range []stats.Phase{stats.PhaseWord1, stats.PhaseWord2} {
		s.trace.RecordSize(slot+1, 0, slots[slot].Len())
		for attempt := 0; slots[slot].Len() > 1; attempt++ {
			if err := ctx.Err(); err != nil {
				return slots, err
			}
			s.trace.RecordSize(slot+1, attempt, slots[slot].Len())

			word := slots[slot].GuessWord(guessStrategy(attempt))
			combo := s.syn.Next()
			p := strings.Repeat(string(primitives.Placeholder), offsets[slot]) +
				word +
				strings.Repeat(string(primitives.Placeholder), s.phraseLen-offsets[slot]-len(word)) +
				strings.Repeat(combo, s.phraseLen)

			positions, characters, _ := s.probe(phase, p)
			narrowed, err := slots[slot].FilterNonEmpty(primitives.PositionMatchConstraint{Word: word, Count: positions})
			if err != nil {
				return slots, fmt.Errorf("slot %d: %w", slot+1, err)
			}
			slots[slot] = narrowed

			bound := primitives.CharMatchAtMostConstraint{Profile: primitives.ProfileOf(p), Count: characters}
			for i := range slots {
				if slots[i], err = slots[i].FilterNonEmpty(bound); err != nil {
					return slots, fmt.Errorf("slot %d: %w", i+1, err)
				}
			}
		}
		s.logger.Debug("slot resolved", zap.Int("slot", slot+1), zap.Strings("words", slots[slot].Words()))
	}
	s.trace.RecordSize(stats.SlotWord3, 0, slots[2].Len())
	return slots, nil
}

func guessStrategy(attempt int) primitives.GuessStrategy {
	switch attempt {
	case 0:
		return primitives.GuessSynthetic
	case 1:
		return primitives.GuessWidest
	}
	return primitives.GuessMiddle
}

// assemble builds every phrase from the slot candidates that agrees with the
// whole probe history.
func (s *session) assemble(slots [3]*primitives.Corpus) (*primitives.Corpus, error) {
	var phrases []string
	for first := range slots[0].All() {
		for second := range slots[1].All() {
			known := first.Word + " " + second.Word + " "
			third := slots[2].Filter(s.hist.ResidualConstraints(known)...)
			for e := range third.All() {
				phrase := known + e.Word
				if s.hist.Consistent(phrase) {
					phrases = append(phrases, phrase)
				}
			}
		}
	}

	pc, err := primitives.NewCorpus(phrases).FilterNonEmpty(s.syn.PhraseConstraints()...)
	if err == nil && pc.Len() == 0 {
		err = fmt.Errorf("%w: no phrase agrees with %d probes", ErrCorpusExhausted, s.hist.Len())
	}
	if err != nil {
		return nil, fmt.Errorf("assembling phrases: %w", err)
	}
	s.logger.Debug("phrases assembled", zap.Int("candidates", pc.Len()))
	return pc, nil
}

// eliminate probes candidate phrases until one is left. It reports whether
// the oracle confirmed the phrase with an exact answer.
func (s *session) eliminate(ctx context.Context, phase stats.Phase, pc *primitives.Corpus) (string, bool, error) {
	for attempt := 0; pc.Len() > 1; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		s.trace.RecordSize(stats.SlotPhrase, attempt, pc.Len())

		strategy := primitives.GuessMiddle
		if attempt == 0 && pc.Len() > syntheticPhraseThreshold {
			strategy = primitives.GuessSynthetic
		}
		guess := pc.GuessWord(strategy)

		positions, characters, exact := s.probe(phase, guess)
		if exact && positions == s.phraseLen && len(guess) == s.phraseLen {
			return guess, true, nil
		}

		var err error
		pc, err = pc.FilterNonEmpty(primitives.MastermindConstraint{Word: guess, Chars: characters, Positions: positions})
		if err != nil {
			if d, ok := s.oracle.(interface{ DebugString() string }); ok {
				s.logger.Debug("elimination exhausted", zap.String("oracle", d.DebugString()))
			}
			return "", false, fmt.Errorf("eliminating phrases: %w", err)
		}
	}
	return pc.Word(0), false, nil
}
