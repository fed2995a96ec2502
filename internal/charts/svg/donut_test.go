package svg

import (
	"strings"
	"testing"
)

func TestDonutGeometryGapBetweenSlices(t *testing.T) {
	arcs := DonutGeometry([]Slice{
		{Label: "fruits", Value: 50},
		{Label: "meat", Value: 50},
	}, 120, 120, 100)
	if len(arcs) != 2 {
		t.Fatalf("expected 2 arcs, got %d", len(arcs))
	}
	for i, arc := range arcs {
		if !almostEqual(arc.Sweep, 180-sliceGapDegrees) {
			t.Fatalf("arc %d sweep %.2f, want %.2f", i, arc.Sweep, 180-sliceGapDegrees)
		}
	}
	if !almostEqual(arcs[1].StartAngle, 180) {
		t.Fatalf("second slice should start at 180, got %.2f", arcs[1].StartAngle)
	}
}

func TestDonutGeometrySingleSliceLeavesSeam(t *testing.T) {
	arcs := DonutGeometry([]Slice{{Label: "other", Value: 42}}, 120, 120, 100)
	if len(arcs) != 1 {
		t.Fatalf("expected 1 arc, got %d", len(arcs))
	}
	if !almostEqual(arcs[0].Sweep, singleSliceSweep) {
		t.Fatalf("single slice sweep %.2f, want %.2f", arcs[0].Sweep, singleSliceSweep)
	}
	if !strings.Contains(arcs[0].Path, "A100.00 100.00 0 1 1") {
		t.Fatalf("near-full slice should use the large-arc flag: %s", arcs[0].Path)
	}
}

func TestDonutGeometryZeroTotal(t *testing.T) {
	if arcs := DonutGeometry([]Slice{{Label: "a"}, {Label: "b"}}, 120, 120, 100); arcs != nil {
		t.Fatalf("zero total should yield no arcs, got %d", len(arcs))
	}
}

func TestDonutGeometryKeepsZeroSlices(t *testing.T) {
	arcs := DonutGeometry([]Slice{
		{Label: "fruits", Value: 10},
		{Label: "empty", Value: 0},
		{Label: "meat", Value: 30},
	}, 120, 120, 100)
	if len(arcs) != 3 {
		t.Fatalf("expected every slice kept, got %d", len(arcs))
	}
	if arcs[1].Sweep != 0 || arcs[1].Path != "" {
		t.Fatalf("zero slice should have no geometry: %+v", arcs[1])
	}
	// The zero slice does not advance the cursor.
	if !almostEqual(arcs[2].StartAngle, arcs[1].StartAngle) {
		t.Fatalf("cursor moved across a zero slice: %.2f vs %.2f", arcs[2].StartAngle, arcs[1].StartAngle)
	}
}

func TestDonutGeometryFractionsSumToOne(t *testing.T) {
	arcs := DonutGeometry([]Slice{
		{Label: "a", Value: 1},
		{Label: "b", Value: 2},
		{Label: "c", Value: 7},
	}, 120, 120, 100)
	sum := 0.0
	for _, arc := range arcs {
		sum += arc.Fraction
	}
	if !almostEqual(sum, 1) {
		t.Fatalf("fractions sum %.4f, want 1", sum)
	}
}

func TestPolarStartsAtTwelveOClock(t *testing.T) {
	x, y := polar(100, 100, 50, 0)
	if !almostEqual(x, 100) || !almostEqual(y, 50) {
		t.Fatalf("0 degrees should point straight up, got (%.2f, %.2f)", x, y)
	}
	x, y = polar(100, 100, 50, 90)
	if !almostEqual(x, 150) || !almostEqual(y, 100) {
		t.Fatalf("90 degrees should point right, got (%.2f, %.2f)", x, y)
	}
}

func TestDonutDataAttr(t *testing.T) {
	markup, err := Donut(240, 240, []Slice{
		{Label: "fruits", Value: 30},
		{Label: "meat", Value: 70},
	}, DonutOpts{DataAttr: "data-category"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := string(markup)
	if !strings.Contains(out, "data-category=\"fruits\"") || !strings.Contains(out, "data-category=\"meat\"") {
		t.Fatalf("slices missing drill-down hooks: %s", out)
	}
	if strings.Count(out, "class=\"drillable\"") != 2 {
		t.Fatalf("expected each slice to be drillable: %s", out)
	}

	plain, err := Donut(240, 240, []Slice{{Label: "fruits", Value: 1}}, DonutOpts{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(string(plain), "data-category") {
		t.Fatal("donut without DataAttr must stay inert")
	}
}

func TestDonutRendersHoleAndLabel(t *testing.T) {
	markup, err := Donut(240, 240, []Slice{
		{Label: "fruits", Value: 30},
		{Label: "meat", Value: 70},
	}, DonutOpts{Title: "Expenses by category", CenterLabel: "$120.50"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := string(markup)
	if !strings.Contains(out, "<circle") {
		t.Fatalf("missing hole circle")
	}
	if !strings.Contains(out, "$120.50") {
		t.Fatalf("missing center label")
	}
	if strings.Count(out, "<path") != 2 {
		t.Fatalf("expected 2 slice paths, got %d", strings.Count(out, "<path"))
	}
}
