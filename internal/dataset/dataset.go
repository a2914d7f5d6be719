// Package dataset loads headline datasets from CSV into positioned items.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/JaimeStill/emotive/internal/emotions"
)

// ErrInvalidDataset indicates a CSV that cannot produce a valid item sequence.
var ErrInvalidDataset = errors.New("invalid dataset")

// Options names the columns holding the text and secondary category.
type Options struct {
	TextColumn     string `toml:"text_column"`
	CategoryColumn string `toml:"category_column"`
}

// DefaultOptions matches the fake_or_real_news.csv layout.
func DefaultOptions() Options {
	return Options{TextColumn: "title", CategoryColumn: "label"}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TextColumn == "" {
		o.TextColumn = d.TextColumn
	}
	if o.CategoryColumn == "" {
		o.CategoryColumn = d.CategoryColumn
	}
	return o
}

// Load reads a CSV with a header row. Columns are located by header name, so a
// leading unnamed index column is ignored. Rows keep file order and are
// positioned from 0. An empty text cell fails the load.
func Load(r io.Reader, opts Options) ([]emotions.Item, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", ErrInvalidDataset)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	textIdx, err := columnIndex(header, opts.TextColumn)
	if err != nil {
		return nil, err
	}
	categoryIdx, err := columnIndex(header, opts.CategoryColumn)
	if err != nil {
		return nil, err
	}

	var items []emotions.Item
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}

		text := strings.TrimSpace(record[textIdx])
		if text == "" {
			line, _ := cr.FieldPos(textIdx)
			return nil, fmt.Errorf("%w: line %d: empty %s", ErrInvalidDataset, line, opts.TextColumn)
		}

		items = append(items, emotions.Item{
			Text:     text,
			Category: strings.TrimSpace(record[categoryIdx]),
			Position: len(items),
		})
	}

	return items, nil
}

func columnIndex(header []string, name string) (int, error) {
	idx := slices.IndexFunc(header, func(h string) bool {
		return strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name)
	})
	if idx < 0 {
		return 0, fmt.Errorf("%w: missing column %q", ErrInvalidDataset, name)
	}
	return idx, nil
}
