package reports

import (
	"github.com/samber/lo"

	"github.com/JaimeStill/emotive/internal/emotions"
)

const (
	PooledTitle   = "Proportion of emotions for fake and real news pooled"
	SeparateTitle = "Proportion of emotions for fake and real news separately"
)

// Chart is a grouped bar chart: one bar group per category on the x axis and
// one bar per series within each group.
type Chart struct {
	Title       string
	XLabel      string
	YLabel      string
	LegendTitle string
	Categories  []string
	Series      []Series
}

// Series is one named set of values aligned with Chart.Categories.
type Series struct {
	Name   string
	Values []float64
}

// UnconditionalChart plots the pooled proportion of each observed label.
func UnconditionalChart(r emotions.UnconditionalReport) Chart {
	return Chart{
		Title:      PooledTitle,
		XLabel:     "Emotion",
		YLabel:     "Proportion",
		Categories: lo.Map(r.Rows, func(row emotions.LabelRow, _ int) string { return row.Label }),
		Series: []Series{{
			Name:   "all",
			Values: lo.Map(r.Rows, func(row emotions.LabelRow, _ int) float64 { return row.Proportion }),
		}},
	}
}

// ConditionalChart plots one series per observed category.
func ConditionalChart(r emotions.ConditionalReport) Chart {
	return Chart{
		Title:       SeparateTitle,
		XLabel:      "Emotion",
		YLabel:      "Proportion",
		LegendTitle: "News type",
		Categories:  r.Labels,
		Series: lo.Map(r.Groups, func(g emotions.CategoryGroup, _ int) Series {
			return Series{
				Name:   g.Category,
				Values: lo.Map(g.Rows, func(row emotions.LabelRow, _ int) float64 { return row.Proportion }),
			}
		}),
	}
}
