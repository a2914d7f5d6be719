package dataset_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/emotive/internal/dataset"
	"github.com/JaimeStill/emotive/internal/emotions"
)

const newsCSV = `,title,text,label
8476,You Can Smell Hillary's Fear,"Daniel Greenfield, a Shillman Journalism Fellow",FAKE
10294,Watch The Exact Moment Paul Ryan Committed Political Suicide,"Google Pinterest Digg",FAKE
3608,Kerry to go to Paris in gesture of sympathy,"U.S. Secretary of State John F. Kerry said Monday",REAL
`

func TestLoadDefaultColumns(t *testing.T) {
	items, err := dataset.Load(strings.NewReader(newsCSV), dataset.Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []emotions.Item{
		{Text: "You Can Smell Hillary's Fear", Category: "FAKE", Position: 0},
		{Text: "Watch The Exact Moment Paul Ryan Committed Political Suicide", Category: "FAKE", Position: 1},
		{Text: "Kerry to go to Paris in gesture of sympathy", Category: "REAL", Position: 2},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCustomColumns(t *testing.T) {
	input := "Headline,Source\nStocks soar,wire\nRain expected,blog\n"

	items, err := dataset.Load(strings.NewReader(input), dataset.Options{
		TextColumn:     "headline",
		CategoryColumn: "source",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 2 || items[1].Category != "blog" || items[1].Position != 1 {
		t.Errorf("items = %+v", items)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty file", "", "missing header"},
		{"missing text column", "headline,label\nx,REAL\n", `missing column "title"`},
		{"missing category column", "title\nx\n", `missing column "label"`},
		{"empty text", "title,label\nfirst,REAL\n  ,FAKE\n", "line 3"},
		{"ragged row", "title,label\nfirst\n", "wrong number of fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dataset.Load(strings.NewReader(tt.input), dataset.Options{})
			if !errors.Is(err, dataset.ErrInvalidDataset) {
				t.Fatalf("Load() error = %v, want ErrInvalidDataset", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadHeaderOnly(t *testing.T) {
	items, err := dataset.Load(strings.NewReader("title,label\n"), dataset.Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len = %d, want 0", len(items))
	}
}
