package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"crosswarped.com/phrasefinder/pkg/primitives"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus, err := loadCorpus(cmd.Context())
		if err != nil {
			return err
		}
		printCorpusStats(corpus)
		return nil
	},
}

func printCorpusStats(corpus *primitives.Corpus) {
	fmt.Fprintf(os.Stdout, "Words: %s\n", humanize.Comma(int64(corpus.Len())))
	fmt.Fprintf(os.Stdout, "Valid: %t\n", corpus.Valid())
	fmt.Fprintf(os.Stdout, "Lengths: %d to %d\n", corpus.MinWordLength(), corpus.MaxWordLength())
	fmt.Fprintf(os.Stdout, "By frequency: %s\n", corpus.CharsByFrequency())

	dist := corpus.SizeDistribution()
	lengths := make([]int, 0, len(dist))
	for n := range dist {
		lengths = append(lengths, n)
	}
	slices.Sort(lengths)
	for _, n := range lengths {
		fmt.Fprintf(os.Stdout, "%4d %10s\n", n, humanize.Comma(int64(dist[n])))
	}

	freq := corpus.Frequency()
	for _, c := range []byte(corpus.CharsByFrequency()) {
		fmt.Fprintf(os.Stdout, "%c %10s\n", c, humanize.Comma(int64(freq.Count(c))))
	}
}
