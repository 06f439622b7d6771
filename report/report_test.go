package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phastdx/loadreport/runlog"
)

// A 1x1 transparent PNG; the logo is embedded verbatim, never decoded, so
// any bytes would do, but a real image keeps the data URI honest.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func reportDataset() runlog.Dataset {
	return runlog.Dataset{
		{AssayID: "AB12-3", ChipLot: "L1", ChipBatch: 7, Instrument: "AB12", SampleLoadingTime: 10.0},
		{AssayID: "AB12-4", ChipLot: "L1", ChipBatch: 7, Instrument: "AB12", SampleLoadingTime: 20.0},
		{AssayID: "EF00-9", ChipLot: "L2", ChipBatch: 8, Instrument: "EF00", SampleLoadingTime: 30.0},
	}
}

func writeLogo(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(path, tinyPNG, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return path
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dashboard.html")

	err := Generate(out, Params{
		Title:    "Test Dashboard",
		LogoPath: writeLogo(t, dir),
		Dataset:  reportDataset(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	html := string(raw)

	for _, expected := range []string{
		"Test Dashboard",
		"data:image/png;base64,",
		`id="box-chip-lot"`,
		`id="box-chip-batch"`,
		`id="box-instrument"`,
		`id="violin-instrument"`,
		`id="radar-instrument"`,
		`id="batch-comparison"`,
		`id="instrument-comparison"`,
		"GROUP_STATS",
		"AB12-3", // the cleaned dataset is embedded in full
		"sample_loading_time",
	} {
		if !strings.Contains(html, expected) {
			t.Fatalf("Dashboard missing %q", expected)
		}
	}

	// No leftover temp file from the atomic write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".dashboard-") {
			t.Fatalf("Leftover temp file %s", e.Name())
		}
	}
}

func TestGenerateSingleGroupSkipsComparison(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dashboard.html")

	// One batch and one instrument: nothing to compare, but the grouped
	// distribution figures still render.
	ds := runlog.Dataset{
		{AssayID: "AB12-3", ChipLot: "L1", ChipBatch: 7, Instrument: "AB12", SampleLoadingTime: 10.0},
		{AssayID: "AB12-4", ChipLot: "L1", ChipBatch: 7, Instrument: "AB12", SampleLoadingTime: 20.0},
	}

	if err := Generate(out, Params{Title: "T", LogoPath: writeLogo(t, dir), Dataset: ds}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if strings.Contains(string(raw), `id="batch-comparison"`) {
		t.Fatal("Comparison section should be omitted with a single group value")
	}
}

func TestGenerateEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dashboard.html")

	if err := Generate(out, Params{Title: "T", LogoPath: writeLogo(t, dir), Dataset: nil}); err == nil {
		t.Fatal("Expected an error for an empty dataset")
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("No output file should exist after a failed build")
	}
}

func TestGenerateMissingLogo(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dashboard.html")

	err := Generate(out, Params{
		Title:    "T",
		LogoPath: filepath.Join(dir, "absent.png"),
		Dataset:  reportDataset(),
	})
	if err == nil {
		t.Fatal("Expected an error for a missing logo asset")
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("No output file should exist after a failed build")
	}
}
