// Package runlog loads instrument-run measurement logs and cleans them into
// an immutable Dataset suitable for grouping and aggregation.
package runlog

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// InstrumentPrefixLen is the number of leading characters of the assay ID
// that identify the instrument which produced the run.
const InstrumentPrefixLen = 4

// Record is one assay run from the source log. The csv-tagged fields mirror
// the source columns; ChipBatch and Instrument are derived during cleaning.
type Record struct {
	AssayID           string  `csv:"assayID"`
	ChipLot           string  `csv:"chipLot"`
	ChipBatchRaw      string  `csv:"chipBatch"`
	SampleLoadingTime float64 `csv:"sample_loading_time"`

	ChipBatch  int    `csv:"-"`
	Instrument string `csv:"-"`
}

// Dataset is the cleaned sequence of records, in source order. It is built
// once per run and never mutated afterwards.
type Dataset []Record

// Load reads the log at path and returns the cleaned Dataset. The file may
// be gzip, zip, xz, zlib, or bzip2 compressed, and may be comma, tab, or
// semicolon delimited; both properties are sniffed from the content. An
// unreadable file is a fatal error for the caller; rows whose chipBatch
// cannot be coerced to a number are silently dropped (one aggregate tally is
// logged), per the cleaning policy.
func Load(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	r, err := maybeDecompress(f)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer r.Close()

	return Read(r)
}

// Read parses and cleans a log from an uncompressed stream.
func Read(r io.Reader) (Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	comma := sniffDelimiter(raw)

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		cr := csv.NewReader(in)
		cr.Comma = comma
		cr.LazyQuotes = true
		return cr
	})

	records := []*Record{}
	if err := gocsv.UnmarshalBytes(raw, &records); err != nil {
		return nil, pfx.Err(err)
	}

	return clean(records), nil
}

// clean derives Instrument, coerces chipBatch, and drops rows that fail the
// coercion. Retained rows get a canonical integer ChipBatchRaw so that a
// re-serialized Dataset loads back identically.
func clean(records []*Record) Dataset {
	out := make(Dataset, 0, len(records))

	dropped := 0
	for _, rec := range records {
		batch, ok := coerceBatch(rec.ChipBatchRaw)
		if !ok {
			dropped++
			continue
		}

		keep := *rec
		keep.ChipBatch = batch
		keep.ChipBatchRaw = strconv.Itoa(batch)
		keep.Instrument = instrumentFor(keep.AssayID)

		out = append(out, keep)
	}

	if dropped > 0 {
		log.Println("Dropped", dropped, "rows with non-numeric chipBatch")
	}

	return out
}

// coerceBatch parses a chipBatch cell. Fractional values are truncated
// toward zero (so batches 7.2 and 7.9 both become 7); NaN and infinities are
// treated as unparseable, matching the drop-on-coercion-failure policy.
func coerceBatch(raw string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return int(v), true
}

// instrumentFor returns the first InstrumentPrefixLen characters of the
// assay ID, or the whole ID if it is shorter.
func instrumentFor(assayID string) string {
	runes := []rune(assayID)
	if len(runes) <= InstrumentPrefixLen {
		return assayID
	}

	return string(runes[:InstrumentPrefixLen])
}

// Instruments returns the sorted distinct instrument identifiers.
func (d Dataset) Instruments() []string {
	return d.distinctStrings(func(r Record) string { return r.Instrument })
}

// ChipLots returns the sorted distinct chip lot labels.
func (d Dataset) ChipLots() []string {
	return d.distinctStrings(func(r Record) string { return r.ChipLot })
}

// ChipBatches returns the sorted distinct chip batch numbers.
func (d Dataset) ChipBatches() []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, r := range d {
		if _, exists := seen[r.ChipBatch]; exists {
			continue
		}
		seen[r.ChipBatch] = struct{}{}
		out = append(out, r.ChipBatch)
	}

	sort.Ints(out)

	return out
}

func (d Dataset) distinctStrings(field func(Record) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range d {
		v := field(r)
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	sort.Strings(out)

	return out
}

// WriteCSV re-serializes the cleaned Dataset as comma-delimited text with
// the original column names. Loading the result yields an identical Dataset.
func (d Dataset) WriteCSV(w io.Writer) error {
	records := make([]*Record, 0, len(d))
	for i := range d {
		records = append(records, &d[i])
	}

	return pfx.Err(gocsv.Marshal(&records, w))
}

// WriteCSVFile writes the cleaned Dataset to path.
func (d Dataset) WriteCSVFile(path string) error {
	var buf bytes.Buffer
	if err := d.WriteCSV(&buf); err != nil {
		return err
	}

	return pfx.Err(os.WriteFile(path, buf.Bytes(), 0o644))
}
