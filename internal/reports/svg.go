package reports

import (
	"embed"
	"fmt"
	"io"
	"strconv"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2"}

var barTemplate = template.Must(
	template.New("bar.svg.tmpl").
		Funcs(template.FuncMap{
			"xml": template.HTMLEscapeString,
			"sub": func(a, b float64) float64 { return a - b },
		}).
		ParseFS(templateFS, "templates/bar.svg.tmpl"),
)

const (
	chartWidth   = 760.0
	chartHeight  = 440.0
	marginLeft   = 70.0
	marginRight  = 170.0
	marginTop    = 50.0
	marginBottom = 70.0
	tickCount    = 5
)

type svgBar struct {
	X, Y, W, H float64
	Fill       string
	Tooltip    string
}

type svgTick struct {
	Y     float64
	Label string
}

type svgGroup struct {
	X     float64
	Label string
}

type svgLegend struct {
	Y    float64
	Fill string
	Name string
}

type svgChart struct {
	Width, Height            float64
	Left, Right, Top, Bottom float64
	CenterX, CenterY         float64
	Title, XLabel, YLabel    string
	LegendTitle              string
	Ticks                    []svgTick
	Bars                     []svgBar
	Groups                   []svgGroup
	Legend                   []svgLegend
}

// RenderSVG writes c as a grouped bar chart. The y axis spans 0 to the
// largest value rounded up to the next tenth.
func RenderSVG(w io.Writer, c Chart) error {
	for _, s := range c.Series {
		if len(s.Values) != len(c.Categories) {
			return fmt.Errorf("series %q has %d values for %d categories", s.Name, len(s.Values), len(c.Categories))
		}
	}

	if err := barTemplate.Execute(w, layout(c)); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func layout(c Chart) svgChart {
	sc := svgChart{
		Width:       chartWidth,
		Height:      chartHeight,
		Left:        marginLeft,
		Right:       chartWidth - marginRight,
		Top:         marginTop,
		Bottom:      chartHeight - marginBottom,
		Title:       c.Title,
		XLabel:      c.XLabel,
		YLabel:      c.YLabel,
		LegendTitle: c.LegendTitle,
	}
	sc.CenterX = (sc.Left + sc.Right) / 2
	sc.CenterY = (sc.Top + sc.Bottom) / 2

	yMax := axisMax(c)
	plotH := sc.Bottom - sc.Top
	scale := func(v float64) float64 { return v / yMax * plotH }

	for i := range tickCount + 1 {
		v := yMax * float64(i) / tickCount
		sc.Ticks = append(sc.Ticks, svgTick{
			Y:     sc.Bottom - scale(v),
			Label: strconv.FormatFloat(v, 'f', 2, 64),
		})
	}

	if len(c.Categories) == 0 || len(c.Series) == 0 {
		return sc
	}

	groupW := (sc.Right - sc.Left) / float64(len(c.Categories))
	barW := groupW * 0.8 / float64(len(c.Series))

	for i, category := range c.Categories {
		x0 := sc.Left + groupW*float64(i) + groupW*0.1
		sc.Groups = append(sc.Groups, svgGroup{X: x0 + groupW*0.4, Label: category})

		for j, s := range c.Series {
			h := scale(s.Values[i])
			sc.Bars = append(sc.Bars, svgBar{
				X:       x0 + barW*float64(j),
				Y:       sc.Bottom - h,
				W:       barW,
				H:       h,
				Fill:    palette[j%len(palette)],
				Tooltip: fmt.Sprintf("%s %s: %.3f", s.Name, category, s.Values[i]),
			})
		}
	}

	if len(c.Series) > 1 || c.LegendTitle != "" {
		for j, s := range c.Series {
			sc.Legend = append(sc.Legend, svgLegend{
				Y:    12 + 20*float64(j),
				Fill: palette[j%len(palette)],
				Name: s.Name,
			})
		}
	}

	return sc
}

func axisMax(c Chart) float64 {
	peak := 0.0
	for _, s := range c.Series {
		for _, v := range s.Values {
			peak = max(peak, v)
		}
	}
	if peak <= 0 {
		return 1
	}
	return float64(int(peak*10+0.999999)) / 10
}
