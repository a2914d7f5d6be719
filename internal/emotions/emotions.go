// Package emotions assigns one emotion label per text item and aggregates the
// assignments into label distributions, both pooled and per secondary
// category.
//
// The pipeline is two pure stages. AssignAll turns an ordered slice of Items
// into an equally ordered slice of Assignments by taking the arg-max of each
// item's classifier distribution. Unconditional and Conditional reduce a
// complete assignment slice into sorted reports that tables and charts
// consume directly.
package emotions

import (
	"time"
)

// Item is one input record.
type Item struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Position int    `json:"position"`
}

// Assignment is the arg-max label chosen for an item.
type Assignment struct {
	Item        Item    `json:"item"`
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Options tunes AssignAll.
type Options struct {
	// Workers bounds concurrent classifier calls. Zero uses
	// min(runtime.NumCPU(), len(items)).
	Workers int
	// Timeout bounds each classifier call. Zero disables the per-call deadline.
	Timeout time.Duration
	// Labels, when set, restricts distributions to this vocabulary.
	Labels []string
}

// NewItems builds positioned items from parallel text and category slices.
// categories may be nil or shorter than texts; missing entries are empty.
func NewItems(texts []string, categories []string) []Item {
	items := make([]Item, len(texts))
	for i, text := range texts {
		items[i] = Item{Text: text, Position: i}
		if i < len(categories) {
			items[i].Category = categories[i]
		}
	}
	return items
}
