package loadstats

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/phastdx/loadreport/runlog"
)

const epsilon = 1e-12

func testDataset() runlog.Dataset {
	return runlog.Dataset{
		{AssayID: "AB12-3", ChipLot: "L1", ChipBatch: 7, Instrument: "AB12", SampleLoadingTime: 10.0},
		{AssayID: "AB12-4", ChipLot: "L1", ChipBatch: 7, Instrument: "AB12", SampleLoadingTime: 20.0},
		{AssayID: "EF00-9", ChipLot: "L2", ChipBatch: 8, Instrument: "EF00", SampleLoadingTime: 30.0},
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

func TestCompare(t *testing.T) {
	sa, sb, err := Compare(testDataset(), GroupByChipBatch, "7", "8")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	// Batch 7 holds {10, 20}: mean 15, population std 5, min 10, max 20.
	if sa.N != 2 || !approx(sa.Mean, 15.0) || !approx(sa.Std, 5.0) || !approx(sa.Min, 10.0) || !approx(sa.Max, 20.0) {
		t.Fatalf("Batch 7 stats: %+v", sa)
	}

	// Batch 8 holds the single value 30: mean 30, std 0.
	if sb.N != 1 || !approx(sb.Mean, 30.0) || !approx(sb.Std, 0.0) || !approx(sb.Min, 30.0) || !approx(sb.Max, 30.0) {
		t.Fatalf("Batch 8 stats: %+v", sb)
	}
}

func TestGroupSingleMember(t *testing.T) {
	gs, err := Group(testDataset(), GroupByInstrument, "EF00")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}

	if !approx(gs.Mean, 30.0) || !approx(gs.Std, 0.0) {
		t.Fatalf("Single-member group should have mean == value and std == 0, got %+v", gs)
	}
}

func TestEmptyGroup(t *testing.T) {
	for _, v := range []struct {
		field GroupBy
		value string
	}{
		{GroupByChipBatch, "99"},
		{GroupByInstrument, "ZZZZ"},
		{GroupByChipLot, "L9"},
	} {
		if _, err := Group(testDataset(), v.field, v.value); !errors.Is(err, ErrEmptyGroup) {
			t.Fatalf("Group(%s=%q): expected ErrEmptyGroup, got %v", v.field, v.value, err)
		}
	}

	if _, _, err := Compare(testDataset(), GroupByChipBatch, "7", "99"); !errors.Is(err, ErrEmptyGroup) {
		t.Fatalf("Compare with one empty side: expected ErrEmptyGroup, got %v", err)
	}
}

func TestOrderInvariance(t *testing.T) {
	ds := testDataset()
	reversed := make(runlog.Dataset, 0, len(ds))
	for i := len(ds) - 1; i >= 0; i-- {
		reversed = append(reversed, ds[i])
	}

	for _, field := range []GroupBy{GroupByChipLot, GroupByChipBatch, GroupByInstrument} {
		a := Table(ds, field)
		b := Table(reversed, field)

		if len(a) != len(b) {
			t.Fatalf("%s: table sizes differ after reordering (%d vs %d)", field, len(a), len(b))
		}

		for i := range a {
			if a[i].Value != b[i].Value || a[i].N != b[i].N ||
				!approx(a[i].Mean, b[i].Mean) || !approx(a[i].Std, b[i].Std) ||
				!approx(a[i].Min, b[i].Min) || !approx(a[i].Max, b[i].Max) {
				t.Fatalf("%s: group %q differs after reordering:\n%+v\n%+v", field, a[i].Value, a[i], b[i])
			}
		}
	}
}

func TestTableSortsBatchesNumerically(t *testing.T) {
	ds := runlog.Dataset{
		{ChipBatch: 10, SampleLoadingTime: 1},
		{ChipBatch: 2, SampleLoadingTime: 2},
		{ChipBatch: 1, SampleLoadingTime: 3},
	}

	table := Table(ds, GroupByChipBatch)

	values := make([]string, 0, len(table))
	for _, gv := range table {
		values = append(values, gv.Value)
	}

	if expected := []string{"1", "2", "10"}; !reflect.DeepEqual(values, expected) {
		t.Fatalf("Batch table order %v, expected %v", values, expected)
	}
}

func TestGroupByValue(t *testing.T) {
	r := runlog.Record{ChipLot: "L1", ChipBatch: 7, Instrument: "AB12"}

	for _, v := range []struct {
		field    GroupBy
		expected string
	}{
		{GroupByChipLot, "L1"},
		{GroupByChipBatch, "7"},
		{GroupByInstrument, "AB12"},
	} {
		if got := v.field.Value(r); got != v.expected {
			t.Fatalf("%s.Value = %q, expected %q", v.field, got, v.expected)
		}
	}
}

func TestSummarize(t *testing.T) {
	// All-equal values pin the standard deviation to 0 regardless of the
	// estimator's divisor.
	uniform := runlog.Dataset{
		{SampleLoadingTime: 4},
		{SampleLoadingTime: 4},
		{SampleLoadingTime: 4},
		{SampleLoadingTime: 4},
	}

	s := Summarize(uniform)
	if s.N != 4 || !approx(s.Mean, 4.0) || !approx(s.Std, 0.0) || !approx(s.Min, 4.0) || !approx(s.Max, 4.0) {
		t.Fatalf("Uniform summary: %+v", s)
	}

	s = Summarize(testDataset())
	if s.N != 3 || !approx(s.Mean, 20.0) || !approx(s.Min, 10.0) || !approx(s.Max, 30.0) {
		t.Fatalf("Summary: %+v", s)
	}

	if empty := Summarize(nil); empty != (Summary{}) {
		t.Fatalf("Empty dataset summary should be zero, got %+v", empty)
	}
}
