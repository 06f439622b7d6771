package report

import (
	"fmt"

	"github.com/phastdx/loadreport/loadstats"
	"github.com/phastdx/loadreport/runlog"
)

// Figure is a plotly figure specification: serialized to JSON, it is handed
// directly to Plotly.newPlot in the rendered page.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace holds the union of the trace attributes used by the dashboard's
// chart types (box, violin, scatterpolar, bar); unset attributes are omitted
// from the JSON.
type Trace struct {
	Type      string     `json:"type"`
	Name      string     `json:"name,omitempty"`
	X         []string   `json:"x,omitempty"`
	Y         []float64  `json:"y,omitempty"`
	R         []float64  `json:"r,omitempty"`
	Theta     []string   `json:"theta,omitempty"`
	Fill      string     `json:"fill,omitempty"`
	BoxPoints string     `json:"boxpoints,omitempty"`
	Jitter    float64    `json:"jitter,omitempty"`
	PointPos  float64    `json:"pointpos,omitempty"`
	Points    string     `json:"points,omitempty"`
	Box       *ViolinBox `json:"box,omitempty"`
	MeanLine  *MeanLine  `json:"meanline,omitempty"`
	ErrorY    *ErrorY    `json:"error_y,omitempty"`
	HoverText []string   `json:"hovertext,omitempty"`
}

type ErrorY struct {
	Type    string    `json:"type"`
	Array   []float64 `json:"array"`
	Visible bool      `json:"visible"`
}

type ViolinBox struct {
	Visible bool `json:"visible"`
}

type MeanLine struct {
	Visible bool `json:"visible"`
}

type Layout struct {
	Title      Title  `json:"title"`
	Margin     Margin `json:"margin"`
	ShowLegend bool   `json:"showlegend"`
	XAxis      *Axis  `json:"xaxis,omitempty"`
	YAxis      *Axis  `json:"yaxis,omitempty"`
	Polar      *Polar `json:"polar,omitempty"`
}

type Title struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

type Axis struct {
	Title AxisTitle `json:"title"`
}

type AxisTitle struct {
	Text string `json:"text"`
}

type Polar struct {
	RadialAxis RadialAxis `json:"radialaxis"`
}

type RadialAxis struct {
	Visible bool      `json:"visible"`
	Range   []float64 `json:"range,omitempty"`
}

const yAxisLabel = "Sample Loading Time (seconds)"

// centeredLayout mirrors the shared layout of every dashboard figure.
func centeredLayout(title string, field loadstats.GroupBy) Layout {
	return Layout{
		Title:      Title{Text: title, X: 0.5},
		Margin:     Margin{L: 40, R: 40, T: 60, B: 40},
		ShowLegend: true,
		XAxis:      &Axis{Title: AxisTitle{Text: field.String()}},
		YAxis:      &Axis{Title: AxisTitle{Text: yAxisLabel}},
	}
}

// groupedTimes partitions loading times by the field's canonical group
// values, ordered the same way as loadstats.Table.
func groupedTimes(ds runlog.Dataset, field loadstats.GroupBy) ([]string, map[string][]float64) {
	table := loadstats.Table(ds, field)

	order := make([]string, 0, len(table))
	groups := make(map[string][]float64, len(table))
	for _, gv := range table {
		order = append(order, gv.Value)
	}

	for _, r := range ds {
		v := field.Value(r)
		groups[v] = append(groups[v], r.SampleLoadingTime)
	}

	return order, groups
}

// BoxFigure builds a grouped box plot with every individual run overlaid as
// a point, one box per group value.
func BoxFigure(ds runlog.Dataset, field loadstats.GroupBy, title string) Figure {
	order, groups := groupedTimes(ds, field)

	traces := make([]Trace, 0, len(order))
	for _, v := range order {
		traces = append(traces, Trace{
			Type:      "box",
			Name:      v,
			Y:         groups[v],
			BoxPoints: "all",
			Jitter:    0.3,
			PointPos:  -1.8,
		})
	}

	return Figure{Data: traces, Layout: centeredLayout(title, field)}
}

// ViolinFigure builds the violin variant of the grouped distribution view,
// with the inner box and mean line visible.
func ViolinFigure(ds runlog.Dataset, field loadstats.GroupBy, title string) Figure {
	order, groups := groupedTimes(ds, field)

	traces := make([]Trace, 0, len(order))
	for _, v := range order {
		traces = append(traces, Trace{
			Type:     "violin",
			Name:     v,
			Y:        groups[v],
			Points:   "all",
			Box:      &ViolinBox{Visible: true},
			MeanLine: &MeanLine{Visible: true},
		})
	}

	return Figure{Data: traces, Layout: centeredLayout(title, field)}
}

var radarAxes = []string{"Mean", "Std", "Min", "Max"}

// RadarFigure compares groups across the four summary statistics on a polar
// chart. Each axis is normalized by its maximum across groups so that
// differently-scaled statistics share one radial range.
func RadarFigure(table []loadstats.GroupValueStats, field loadstats.GroupBy, title string) Figure {
	axisMax := make([]float64, len(radarAxes))
	for _, gv := range table {
		for i, v := range radarValues(gv.GroupStats) {
			if v > axisMax[i] {
				axisMax[i] = v
			}
		}
	}

	traces := make([]Trace, 0, len(table))
	for _, gv := range table {
		r := radarValues(gv.GroupStats)
		for i := range r {
			if axisMax[i] > 0 {
				r[i] /= axisMax[i]
			}
		}

		traces = append(traces, Trace{
			Type:  "scatterpolar",
			Name:  gv.Value,
			R:     r,
			Theta: radarAxes,
			Fill:  "toself",
		})
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			Title:      Title{Text: title, X: 0.5},
			Margin:     Margin{L: 40, R: 40, T: 60, B: 40},
			ShowLegend: true,
			Polar:      &Polar{RadialAxis: RadialAxis{Visible: true, Range: []float64{0, 1}}},
		},
	}
}

func radarValues(gs loadstats.GroupStats) []float64 {
	return []float64{gs.Mean, gs.Std, gs.Min, gs.Max}
}

// ComparisonFigure builds the two-group mean bar chart with standard
// deviation error bars; per-group N and min/max appear in the hover text.
func ComparisonFigure(field loadstats.GroupBy, a, b string, sa, sb loadstats.GroupStats) Figure {
	hover := func(gs loadstats.GroupStats) string {
		return fmt.Sprintf("n=%d min=%.2fs max=%.2fs", gs.N, gs.Min, gs.Max)
	}

	trace := Trace{
		Type: "bar",
		Name: "Average Sample Loading Time",
		X:    []string{a, b},
		Y:    []float64{sa.Mean, sb.Mean},
		ErrorY: &ErrorY{
			Type:    "data",
			Array:   []float64{sa.Std, sb.Std},
			Visible: true,
		},
		HoverText: []string{hover(sa), hover(sb)},
	}

	return Figure{
		Data:   []Trace{trace},
		Layout: centeredLayout(fmt.Sprintf("Comparison: %s vs %s", a, b), field),
	}
}
