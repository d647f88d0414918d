// Package wordsource reads word lists and secret phrases from files and from
// BigQuery.
package wordsource

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads one entry per line. Surrounding whitespace is trimmed, and
// blank lines and lines starting with '#' are skipped. Entries are returned
// as written; validating them is left to the caller.
func LoadFile(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
