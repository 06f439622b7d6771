package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/phastdx/loadreport/loadstats"
)

// meanStripPNG renders a small static bar chart of per-group mean loading
// times and returns it as a data URI. It is the no-script fallback for the
// otherwise plotly-driven page; an empty table yields an empty URI.
func meanStripPNG(table []loadstats.GroupValueStats, field loadstats.GroupBy) (template.URL, error) {
	if len(table) == 0 {
		return "", nil
	}

	bars := make([]chart.Value, 0, len(table))
	yMax := 0.0
	for _, gv := range table {
		bars = append(bars, chart.Value{Value: gv.Mean, Label: gv.Value})
		if gv.Mean > yMax {
			yMax = gv.Mean
		}
	}
	if yMax <= 0 {
		yMax = 1
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Mean Sample Loading Time by %s", field),
		Width:    640,
		Height:   280,
		BarWidth: 40,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1.1 * yMax},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return "", err
	}

	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buffer.Bytes())), nil
}
