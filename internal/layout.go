package internal

import (
	"fmt"
	"sync"
)

// LayoutParams bounds the word lengths of a three-word phrase.
type LayoutParams struct {
	PhraseLength  int
	MinWordLength *int
	MaxWordLength *int
}

type layoutParams struct {
	phraseLength  int
	minWordLength int
	maxWordLength int
}

func asLayoutParams(p LayoutParams) layoutParams {
	pp := layoutParams{
		phraseLength: p.PhraseLength,
	}

	if p.MinWordLength == nil {
		pp.minWordLength = 1
	} else {
		pp.minWordLength = *p.MinWordLength
	}

	if p.MaxWordLength == nil {
		pp.maxWordLength = p.PhraseLength - 2
	} else {
		pp.maxWordLength = *p.MaxWordLength
	}

	return pp
}

// Layout is one way of splitting a phrase into three words.
type Layout struct {
	Len1, Len2, Len3 int
}

// Separators returns the positions of the two spaces.
func (l Layout) Separators() (int, int) {
	return l.Len1, l.Len1 + 1 + l.Len2
}

func (l Layout) String() string {
	return fmt.Sprintf("%d+%d+%d", l.Len1, l.Len2, l.Len3)
}

var (
	layoutsMu       sync.Mutex
	memoizedLayouts = make(map[layoutParams][]Layout)
)

func twoWordSplits(p layoutParams, atLength int) [][2]int {
	var splits [][2]int
	// For length 7 with words of at least 2:
	// 0 1 2 3 4 5 6
	// _ _ _ _ _ _ _
	//     ^   ^
	// The space can be anywhere between idx min and len-min-1 (inclusive).
	for i := p.minWordLength; i <= atLength-p.minWordLength-1; i++ {
		first, second := i, atLength-i-1
		if first > p.maxWordLength || second > p.maxWordLength {
			continue
		}
		splits = append(splits, [2]int{first, second})
	}
	return splits
}

// AllLayouts returns every layout of a phrase of the given length whose word
// lengths lie within the bounds, ordered by the first then the second word
// length. Results are memoized and must not be modified.
func AllLayouts(p LayoutParams) []Layout {
	params := asLayoutParams(p)
	params.minWordLength = max(params.minWordLength, 1)

	layoutsMu.Lock()
	defer layoutsMu.Unlock()

	if memo, ok := memoizedLayouts[params]; ok {
		return memo
	}

	var layouts []Layout
	for first := params.minWordLength; first <= params.maxWordLength; first++ {
		rest := params.phraseLength - first - 1
		if rest < 2*params.minWordLength+1 {
			break
		}
		for _, split := range twoWordSplits(params, rest) {
			layouts = append(layouts, Layout{Len1: first, Len2: split[0], Len3: split[1]})
		}
	}
	memoizedLayouts[params] = layouts
	return layouts
}
