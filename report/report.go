// Package report renders a cleaned runlog Dataset and its aggregates into
// one self-contained HTML dashboard: inlined logo, interactive figures,
// selector-driven group comparisons, and an embedded copy of the data.
package report

import (
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/carbocation/pfx"

	"github.com/phastdx/loadreport/loadstats"
	"github.com/phastdx/loadreport/runlog"
)

//go:embed templates/report.html
var reportTemplate string

// Params configures one dashboard build.
type Params struct {
	Title    string
	LogoPath string
	Dataset  runlog.Dataset
}

type figureSection struct {
	DivID string
	Spec  template.JS
}

type comparisonSection struct {
	Heading  string
	DivID    string
	Field    string
	SelectA  string
	SelectB  string
	Options  []string
	InitialA string
	InitialB string
	Spec     template.JS
}

type summaryCard struct {
	Label string
	Value string
}

type pageData struct {
	Title       string
	GeneratedAt string
	LogoURI     template.URL
	FallbackPNG template.URL
	Cards       []summaryCard
	Figures     []figureSection
	Comparisons []comparisonSection
	GroupStats  template.JS
	Dataset     template.JS
}

// datasetRow is the embedded serialization of one cleaned record; key names
// follow the source columns so the embedded copy reads like the input file.
type datasetRow struct {
	AssayID           string  `json:"assayID"`
	ChipLot           string  `json:"chipLot"`
	ChipBatch         int     `json:"chipBatch"`
	Instrument        string  `json:"Instrument"`
	SampleLoadingTime float64 `json:"sample_loading_time"`
}

type statsRow struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Generate builds the dashboard for p and writes it to outPath. The output
// is written to a temporary file first and renamed into place, so a failed
// build never leaves a partial dashboard behind.
func Generate(outPath string, p Params) error {
	if len(p.Dataset) == 0 {
		return errors.New("report: no cleaned rows to chart")
	}

	logoURI, err := inlineImage(p.LogoPath)
	if err != nil {
		return pfx.Err(err)
	}

	data := pageData{
		Title:       p.Title,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05 MST"),
		LogoURI:     logoURI,
	}

	summary := loadstats.Summarize(p.Dataset)
	data.Cards = []summaryCard{
		{Label: "Runs", Value: strconv.Itoa(summary.N)},
		{Label: "Mean Loading Time", Value: fmt.Sprintf("%.2f s", summary.Mean)},
		{Label: "Std", Value: fmt.Sprintf("%.2f s", summary.Std)},
		{Label: "Fastest", Value: fmt.Sprintf("%.2f s", summary.Min)},
		{Label: "Slowest", Value: fmt.Sprintf("%.2f s", summary.Max)},
	}

	instrumentTable := loadstats.Table(p.Dataset, loadstats.GroupByInstrument)

	figures := []struct {
		divID string
		fig   Figure
	}{
		{"box-chip-lot", BoxFigure(p.Dataset, loadstats.GroupByChipLot, "Sample Loading Time by Chip Lot")},
		{"box-chip-batch", BoxFigure(p.Dataset, loadstats.GroupByChipBatch, "Sample Loading Time by Chip Batch")},
		{"box-instrument", BoxFigure(p.Dataset, loadstats.GroupByInstrument, "Sample Loading Time by Instrument")},
		{"violin-instrument", ViolinFigure(p.Dataset, loadstats.GroupByInstrument, "Loading Time Distribution by Instrument")},
		{"radar-instrument", RadarFigure(instrumentTable, loadstats.GroupByInstrument, "Instrument Profile (normalized)")},
	}

	for _, f := range figures {
		spec, err := asJS(f.fig)
		if err != nil {
			return err
		}
		data.Figures = append(data.Figures, figureSection{DivID: f.divID, Spec: spec})
	}

	comparisons, err := buildComparisons(p.Dataset)
	if err != nil {
		return err
	}
	data.Comparisons = comparisons

	groupStats := make(map[string]map[string]statsRow)
	for _, field := range []loadstats.GroupBy{loadstats.GroupByChipBatch, loadstats.GroupByInstrument} {
		byValue := make(map[string]statsRow)
		for _, gv := range loadstats.Table(p.Dataset, field) {
			byValue[gv.Value] = statsRow{N: gv.N, Mean: gv.Mean, Std: gv.Std, Min: gv.Min, Max: gv.Max}
		}
		groupStats[field.String()] = byValue
	}
	if data.GroupStats, err = asJS(groupStats); err != nil {
		return err
	}

	rows := make([]datasetRow, 0, len(p.Dataset))
	for _, r := range p.Dataset {
		rows = append(rows, datasetRow{
			AssayID:           r.AssayID,
			ChipLot:           r.ChipLot,
			ChipBatch:         r.ChipBatch,
			Instrument:        r.Instrument,
			SampleLoadingTime: r.SampleLoadingTime,
		})
	}
	if data.Dataset, err = asJS(rows); err != nil {
		return err
	}

	fallback, err := meanStripPNG(instrumentTable, loadstats.GroupByInstrument)
	if err != nil {
		return pfx.Err(err)
	}
	data.FallbackPNG = fallback

	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return pfx.Err(err)
	}

	return writeAtomically(outPath, tmpl, data)
}

// buildComparisons prepares the two selector-driven sections. A dimension
// with fewer than two distinct values cannot be compared and is omitted.
func buildComparisons(ds runlog.Dataset) ([]comparisonSection, error) {
	out := make([]comparisonSection, 0, 2)

	batches := ds.ChipBatches()
	batchOptions := make([]string, 0, len(batches))
	for _, b := range batches {
		batchOptions = append(batchOptions, strconv.Itoa(b))
	}

	sections := []struct {
		heading string
		divID   string
		field   loadstats.GroupBy
		options []string
	}{
		{"Batch Comparison", "batch-comparison", loadstats.GroupByChipBatch, batchOptions},
		{"Instrument Comparison", "instrument-comparison", loadstats.GroupByInstrument, ds.Instruments()},
	}

	for _, s := range sections {
		if len(s.options) < 2 {
			log.Println("Skipping", s.heading, "section:", len(s.options), "distinct value(s)")
			continue
		}

		a, b := s.options[0], s.options[1]
		sa, sb, err := loadstats.Compare(ds, s.field, a, b)
		if err != nil {
			return nil, err
		}

		spec, err := asJS(ComparisonFigure(s.field, a, b, sa, sb))
		if err != nil {
			return nil, err
		}

		out = append(out, comparisonSection{
			Heading:  s.heading,
			DivID:    s.divID,
			Field:    s.field.String(),
			SelectA:  s.divID + "-a",
			SelectB:  s.divID + "-b",
			Options:  s.options,
			InitialA: a,
			InitialB: b,
			Spec:     spec,
		})
	}

	return out, nil
}

// inlineImage reads the branding asset and returns it as a data URI.
func inlineImage(path string) (template.URL, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)), nil
}

func asJS(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", pfx.Err(err)
	}

	return template.JS(b), nil
}

func writeAtomically(outPath string, tmpl *template.Template, data pageData) error {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".dashboard-*.html")
	if err != nil {
		return pfx.Err(err)
	}

	if err := tmpl.Execute(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return pfx.Err(err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return pfx.Err(err)
	}

	if err := os.Rename(tmp.Name(), outPath); err != nil {
		os.Remove(tmp.Name())
		return pfx.Err(err)
	}

	return nil
}
