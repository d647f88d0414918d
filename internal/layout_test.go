package internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(i int) *int {
	return &i
}

func TestAllLayouts(t *testing.T) {
	tests := []struct {
		name   string
		params LayoutParams
		want   []Layout
	}{
		{
			name:   "single layout",
			params: LayoutParams{PhraseLength: 11, MinWordLength: intPtr(3), MaxWordLength: intPtr(3)},
			want:   []Layout{{3, 3, 3}},
		},
		{
			name:   "bounded",
			params: LayoutParams{PhraseLength: 12, MinWordLength: intPtr(3), MaxWordLength: intPtr(5)},
			want:   []Layout{{3, 3, 4}, {3, 4, 3}, {4, 3, 3}},
		},
		{
			name:   "defaults",
			params: LayoutParams{PhraseLength: 5},
			want:   []Layout{{1, 1, 1}},
		},
		{
			name:   "too short",
			params: LayoutParams{PhraseLength: 10, MinWordLength: intPtr(4)},
			want:   nil,
		},
		{
			name:   "too long",
			params: LayoutParams{PhraseLength: 12, MinWordLength: intPtr(1), MaxWordLength: intPtr(2)},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllLayouts(tt.params)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AllLayouts() mismatch (-want +got):\n%s", diff)
			}
			// Memoized results are identical.
			if diff := cmp.Diff(got, AllLayouts(tt.params)); diff != "" {
				t.Errorf("AllLayouts() second call mismatch (-first +second):\n%s", diff)
			}
		})
	}
}

func TestAllLayouts_WordLengths(t *testing.T) {
	for l := 8; l <= 20; l++ {
		for _, layout := range AllLayouts(LayoutParams{PhraseLength: l, MinWordLength: intPtr(2), MaxWordLength: intPtr(6)}) {
			if layout.Len1+layout.Len2+layout.Len3+2 != l {
				t.Errorf("layout %s does not add up to %d", layout, l)
			}
			for _, n := range []int{layout.Len1, layout.Len2, layout.Len3} {
				if n < 2 || n > 6 {
					t.Errorf("layout %s has a word of length %d", layout, n)
				}
			}
		}
	}
}

func TestLayout_Separators(t *testing.T) {
	first, second := Layout{3, 4, 3}.Separators()
	if first != 3 || second != 8 {
		t.Errorf("Separators() = (%d, %d), want (3, 8)", first, second)
	}
}
