// loadreport turns an instrument-run measurement log into a single
// self-contained HTML dashboard of sample-loading-time distributions per
// chip lot, chip batch, and instrument.
package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/kardianos/osext"

	"github.com/phastdx/loadreport/buildinfo"
	"github.com/phastdx/loadreport/report"
	"github.com/phastdx/loadreport/runlog"
)

func main() {
	log.Println(buildinfo.Collect().Banner())

	// Default paths live next to the binary, like the data/ and assets/
	// folders the analysis scripts ship with.
	folder, err := osext.ExecutableFolder()
	if err != nil {
		folder = "."
	}

	var input, logo, out, cleanedOut, title string

	flag.StringVar(&input, "input", filepath.Join(folder, "data", "20250403_Log_analysis_looker.csv"), "Path to the instrument-run log (CSV/TSV, optionally compressed)")
	flag.StringVar(&logo, "logo", filepath.Join(folder, "assets", "phast_logo.png"), "Path to the logo PNG embedded in the dashboard header")
	flag.StringVar(&out, "out", filepath.Join(folder, "dashboard.html"), "Path for the generated HTML dashboard")
	flag.StringVar(&cleanedOut, "cleaned-out", "", "Optional path to also export the cleaned dataset as CSV")
	flag.StringVar(&title, "title", "PhAST Product Dashboard", "Dashboard title")
	flag.Parse()

	if err := run(input, logo, out, cleanedOut, title); err != nil {
		log.Fatalln(err)
	}
}

func run(input, logo, out, cleanedOut, title string) error {
	ds, err := runlog.Load(input)
	if err != nil {
		return err
	}
	log.Println("Loaded", len(ds), "cleaned rows from", input)

	if cleanedOut != "" {
		if err := ds.WriteCSVFile(cleanedOut); err != nil {
			return err
		}
		log.Println("Exported cleaned dataset to", cleanedOut)
	}

	if err := report.Generate(out, report.Params{
		Title:    title,
		LogoPath: logo,
		Dataset:  ds,
	}); err != nil {
		return err
	}
	log.Println("Dashboard written to", out)

	return nil
}
