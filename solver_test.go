package phrasefinder

import (
	"bufio"
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"crosswarped.com/phrasefinder/pkg/primitives"
	"crosswarped.com/phrasefinder/pkg/stats"
)

func loadWords(t testing.TB) []string {
	file, err := os.Open("testdata/words.txt")
	if err != nil {
		t.Fatalf("failed to open words file: %v", err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" && !strings.HasPrefix(line, "#") {
			words = append(words, line)
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to scan words file: %v", err)
	}
	return words
}

// oracleFunc adapts a function to the Oracle interface.
type oracleFunc func(candidate string) (int, int, bool)

func (f oracleFunc) Match(candidate string) (int, int, bool) {
	return f(candidate)
}

func TestSolve_SmallCorpus(t *testing.T) {
	corpus := primitives.NewCorpus([]string{"cat", "dog", "ant", "bee"})
	solver := NewSolver(corpus, SolverParams{Logger: zaptest.NewLogger(t)})

	res, err := solver.Solve(t.Context(), NewSecret("cat dog ant"))
	require.NoError(t, err)
	require.Equal(t, "cat dog ant", res.Phrase)
	require.Equal(t, 3, res.Separators.First)
	require.Equal(t, 7, res.Separators.Second)

	require.Equal(t, 1, res.Trace.Probes(stats.PhaseLength))
	// A single layout fits, so no probe is spent on the separators.
	require.Equal(t, 0, res.Trace.Probes(stats.PhaseSpaces))
	require.Equal(t, 2, res.Trace.Probes(stats.PhaseWord1))
	require.Equal(t, 2, res.Trace.Probes(stats.PhaseWord2))
	require.Equal(t, 0, res.Trace.Probes(stats.PhaseConfirm))
	require.Equal(t, 5, res.Probes())
}

func TestSolve_Confirm(t *testing.T) {
	corpus := primitives.NewCorpus([]string{"cat", "dog", "ant", "bee"})
	solver := NewSolver(corpus, SolverParams{Confirm: true})

	res, err := solver.Solve(t.Context(), NewSecret("cat dog ant"))
	require.NoError(t, err)
	require.Equal(t, "cat dog ant", res.Phrase)
	require.Equal(t, 1, res.Trace.Probes(stats.PhaseConfirm))
	require.Equal(t, 5, res.Probes())
}

func TestSolve_Words(t *testing.T) {
	words := loadWords(t)
	corpus := primitives.NewCorpus(words)
	require.True(t, corpus.Valid())
	solver := NewSolver(corpus, SolverParams{Confirm: true})

	// Use a fixed seed for reproducibility.
	rng := rand.New(rand.NewPCG(42, 1024))
	phrases := []string{
		"cat dog ant",
		"yellow bridge oven",
		"ink ink ink",
		"umbra rabbit zip",
	}
	for range 20 {
		phrases = append(phrases, strings.Join([]string{
			words[rng.IntN(len(words))],
			words[rng.IntN(len(words))],
			words[rng.IntN(len(words))],
		}, " "))
	}

	for _, phrase := range phrases {
		t.Run(phrase, func(t *testing.T) {
			res, err := solver.Solve(t.Context(), NewSecret(phrase))
			require.NoError(t, err, "trace: %s", res.Trace)
			require.Equal(t, phrase, res.Phrase)

			first, second, third := res.Separators.Lengths(len(phrase))
			require.Equal(t, strings.Fields(phrase), []string{
				phrase[:first],
				phrase[first+1 : first+1+second],
				phrase[len(phrase)-third:],
			})
		})
	}
}

func TestSolve_Errors(t *testing.T) {
	words := primitives.NewCorpus([]string{"cat", "dog", "ant", "bee"})

	tests := []struct {
		name    string
		corpus  *primitives.Corpus
		oracle  Oracle
		wantErr error
	}{
		{
			name:    "empty corpus",
			corpus:  primitives.NewCorpus(nil),
			oracle:  NewSecret("cat dog ant"),
			wantErr: ErrCorpusExhausted,
		},
		{
			name:   "silent oracle",
			corpus: words,
			oracle: oracleFunc(func(string) (int, int, bool) {
				return 0, 0, false
			}),
			wantErr: ErrOracleInconsistency,
		},
		{
			name:    "phrase too long for the corpus",
			corpus:  words,
			oracle:  NewSecret("cat dog ant bee"),
			wantErr: ErrOracleInconsistency,
		},
		{
			name:    "words outside the corpus",
			corpus:  words,
			oracle:  NewSecret("tab god net"),
			wantErr: ErrCorpusExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solver := NewSolver(tt.corpus, SolverParams{Logger: zaptest.NewLogger(t)})
			res, err := solver.Solve(t.Context(), tt.oracle)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Solve() error = %v, want %v", err, tt.wantErr)
			}
			if res.Trace == nil {
				t.Errorf("Solve() returned no trace on failure")
			}
		})
	}
}

func TestSession_FindLength(t *testing.T) {
	small := primitives.NewCorpus([]string{"cat", "dog", "ant", "bee"})
	words := primitives.NewCorpus(loadWords(t))

	tests := []struct {
		corpus *primitives.Corpus
		phrase string
		want   int
	}{
		{small, "cat dog ant", 11},
		{small, "bee bee bee", 11},
		{words, "yellow bridge oven", 18},
		{words, "ink ink ink", 11},
		{words, "umbra rabbit zip", 16},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			sess := &session{
				Solver: NewSolver(tt.corpus, SolverParams{}),
				oracle: NewSecret(tt.phrase),
				logger: zaptest.NewLogger(t),
				trace:  stats.NewTrace(),
			}
			require.NoError(t, sess.findLength())

			require.Equal(t, tt.want, sess.phraseLen)
			require.Equal(t, 1, sess.trace.Probes(stats.PhaseLength))
			require.Equal(t, 1, sess.hist.Len())
			require.Equal(t, tt.want, sess.hist.Elements()[0].Characters)

			// The first oracle call pins the number of non-space symbols.
			total := 0
			for _, n := range sess.syn.Facts() {
				total += n
			}
			require.Equal(t, tt.want-2, total)
		})
	}
}

func TestSolve_Cancelled(t *testing.T) {
	solver := NewSolver(primitives.NewCorpus(loadWords(t)), SolverParams{})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := solver.Solve(ctx, NewSecret("kite lamp mint"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Solve() error = %v, want %v", err, context.Canceled)
	}
}

func BenchmarkSolve(b *testing.B) {
	words := loadWords(b)
	solver := NewSolver(primitives.NewCorpus(words), SolverParams{})
	b.ReportAllocs()

	rng := rand.New(rand.NewPCG(42, 1024))
	for b.Loop() {
		phrase := words[rng.IntN(len(words))] + " " + words[rng.IntN(len(words))] + " " + words[rng.IntN(len(words))]
		if _, err := solver.Solve(context.Background(), NewSecret(phrase)); err != nil {
			b.Fatalf("Solve(%q): %v", phrase, err)
		}
	}
}
