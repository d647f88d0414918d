package primitives

import "errors"

var (
	// ErrCorpusExhausted is returned when filtering removes every candidate
	// from a corpus that must still hold the answer.
	ErrCorpusExhausted = errors.New("corpus exhausted")

	// ErrOracleInconsistency is returned when oracle responses contradict each
	// other or the facts derived from them.
	ErrOracleInconsistency = errors.New("oracle responses are inconsistent")
)
