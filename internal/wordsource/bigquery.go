package wordsource

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// BigQueryParams selects the words of one scope from a table with word_key
// and scope columns.
type BigQueryParams struct {
	Project  string
	Table    string
	Scope    string
	Location string
}

func (p BigQueryParams) query() string {
	q := fmt.Sprintf("SELECT word_key FROM `%s`", p.Table)
	if p.Scope != "" {
		q += " WHERE scope = @scope"
	}
	return q + " ORDER BY word_key"
}

// LoadBigQuery reads a word list from BigQuery.
func LoadBigQuery(ctx context.Context, p BigQueryParams) ([]string, error) {
	client, err := bigquery.NewClient(ctx, p.Project)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}
	defer client.Close()

	q := client.Query(p.query())
	if p.Location != "" {
		q.Location = p.Location
	}
	if p.Scope != "" {
		q.Parameters = []bigquery.QueryParameter{{Name: "scope", Value: p.Scope}}
	}

	job, err := q.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.Run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("job.Wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return nil, fmt.Errorf("status.Err: %w", err)
	}
	it, err := job.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("job.Read: %w", err)
	}

	var words []string
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("it.Next: %w", err)
		}

		word, err := wordFromRow(row)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, nil
}

func wordFromRow(row []bigquery.Value) (string, error) {
	if len(row) == 0 {
		return "", errors.New("empty row")
	}
	word, ok := row[0].(string)
	if !ok {
		return "", fmt.Errorf("row[0] is not a string: %v", row[0])
	}
	return word, nil
}
