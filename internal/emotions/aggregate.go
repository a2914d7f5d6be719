package emotions

import (
	"slices"

	"github.com/samber/lo"
)

// LabelRow is the count and proportion of one label within a normalization scope.
type LabelRow struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// UnconditionalReport is the pooled label distribution. Rows hold only
// observed labels, sorted by label. A report returned without error always
// has Total > 0.
type UnconditionalReport struct {
	Total int        `json:"total"`
	Rows  []LabelRow `json:"rows"`
}

// CategoryGroup is the label distribution within one secondary category.
type CategoryGroup struct {
	Category string     `json:"category"`
	Total    int        `json:"total"`
	Rows     []LabelRow `json:"rows"`
}

// ConditionalReport is the label distribution normalized independently within
// each category. Every group carries one row per entry of Labels, zero rows
// included. Absent lists declared categories that had no items.
type ConditionalReport struct {
	Labels []string        `json:"labels"`
	Groups []CategoryGroup `json:"groups"`
	Absent []string        `json:"absent,omitempty"`
}

// Categories returns the observed categories in report order.
func (r ConditionalReport) Categories() []string {
	return lo.Map(r.Groups, func(g CategoryGroup, _ int) string { return g.Category })
}

// Lookup returns the row for (label, category). It reports false when the
// category had no items or the label is not on the report's axis.
func (r ConditionalReport) Lookup(label, category string) (LabelRow, bool) {
	group, ok := lo.Find(r.Groups, func(g CategoryGroup) bool { return g.Category == category })
	if !ok {
		return LabelRow{}, false
	}
	return lo.Find(group.Rows, func(row LabelRow) bool { return row.Label == label })
}

// Unconditional counts assignments per label over the whole sequence.
func Unconditional(assignments []Assignment) (UnconditionalReport, error) {
	if len(assignments) == 0 {
		return UnconditionalReport{}, ErrEmptyInput
	}

	counts := make(map[string]int)
	for _, a := range assignments {
		counts[a.Label]++
	}

	total := len(assignments)
	labels := lo.Keys(counts)
	slices.Sort(labels)

	rows := make([]LabelRow, len(labels))
	for i, label := range labels {
		rows[i] = newRow(label, counts[label], total)
	}

	return UnconditionalReport{Total: total, Rows: rows}, nil
}

type pair struct {
	label    string
	category string
}

// Conditional counts assignments per (label, category) and normalizes within
// each category. declared names categories expected in the input; those with
// no assignments are reported in Absent instead of producing empty groups.
func Conditional(assignments []Assignment, declared ...string) (ConditionalReport, error) {
	if len(assignments) == 0 {
		return ConditionalReport{Absent: absent(declared, nil)}, ErrEmptyInput
	}

	counts := make(map[pair]int)
	totals := make(map[string]int)
	seen := make(map[string]struct{})

	for _, a := range assignments {
		counts[pair{a.Label, a.Item.Category}]++
		totals[a.Item.Category]++
		seen[a.Label] = struct{}{}
	}

	labels := lo.Keys(seen)
	slices.Sort(labels)

	categories := lo.Keys(totals)
	slices.Sort(categories)

	groups := make([]CategoryGroup, len(categories))
	for i, category := range categories {
		total := totals[category]
		rows := make([]LabelRow, len(labels))
		for j, label := range labels {
			rows[j] = newRow(label, counts[pair{label, category}], total)
		}
		groups[i] = CategoryGroup{Category: category, Total: total, Rows: rows}
	}

	return ConditionalReport{
		Labels: labels,
		Groups: groups,
		Absent: absent(declared, totals),
	}, nil
}

func absent(declared []string, totals map[string]int) []string {
	missing := lo.Filter(lo.Uniq(declared), func(c string, _ int) bool {
		return totals[c] == 0
	})
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return missing
}

func newRow(label string, count, total int) LabelRow {
	return LabelRow{
		Label:      label,
		Count:      count,
		Proportion: float64(count) / float64(total),
	}
}
