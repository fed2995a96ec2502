package svg

import (
	"strings"
	"testing"
)

func TestBarGeometryScalesToMax(t *testing.T) {
	bars := BarGeometry([]float64{10, 20, 40}, 300, 200)
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if !almostEqual(bars[2].Height, 200) {
		t.Fatalf("tallest bar should fill the plot height, got %.2f", bars[2].Height)
	}
	if !almostEqual(bars[0].Height, 50) {
		t.Fatalf("expected proportional height 50, got %.2f", bars[0].Height)
	}
	if !almostEqual(bars[1].Height, 100) {
		t.Fatalf("expected proportional height 100, got %.2f", bars[1].Height)
	}
}

func TestBarGeometrySlotFill(t *testing.T) {
	bars := BarGeometry([]float64{1, 2}, 200, 100)
	slot := 100.0
	wantWidth := slot * barSlotFill
	for i, bar := range bars {
		if !almostEqual(bar.Width, wantWidth) {
			t.Fatalf("bar %d width %.2f, want %.2f", i, bar.Width, wantWidth)
		}
	}
	// Bars are centered in their slot.
	if !almostEqual(bars[0].X, (slot-wantWidth)/2) {
		t.Fatalf("bar 0 should be centered, x=%.2f", bars[0].X)
	}
	if !almostEqual(bars[1].X, slot+(slot-wantWidth)/2) {
		t.Fatalf("bar 1 should be centered in second slot, x=%.2f", bars[1].X)
	}
}

func TestBarGeometryAllZero(t *testing.T) {
	bars := BarGeometry([]float64{0, 0, 0}, 300, 200)
	for i, bar := range bars {
		if bar.Height != 0 {
			t.Fatalf("bar %d height should be 0, got %.2f", i, bar.Height)
		}
		if !almostEqual(bar.Y, 200) {
			t.Fatalf("bar %d should sit on the baseline, y=%.2f", i, bar.Y)
		}
	}
}

func TestBarGeometryEmpty(t *testing.T) {
	if bars := BarGeometry(nil, 300, 200); bars != nil {
		t.Fatalf("expected nil for empty values, got %v", bars)
	}
}

func TestBarsRendersSVG(t *testing.T) {
	markup, err := Bars(720, 240, []float64{5, 9}, []string{"Mon", "Tue"}, BarOpts{Title: "Shopping days"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := string(markup)
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatalf("output is not an svg document: %s", out)
	}
	if strings.Count(out, "<rect") != 2 {
		t.Fatalf("expected 2 rects, got %d", strings.Count(out, "<rect"))
	}
	if !strings.Contains(out, "Shopping days") {
		t.Fatalf("missing title in output")
	}
	if !strings.Contains(out, "Mon") || !strings.Contains(out, "Tue") {
		t.Fatalf("missing axis labels")
	}
}

func TestBarsDataAttr(t *testing.T) {
	markup, err := Bars(720, 240, []float64{5, 9}, []string{"2026-08-01", "2026-08-02"}, BarOpts{DataAttr: "data-date"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := string(markup)
	if strings.Count(out, "data-date=") != 2 {
		t.Fatalf("expected a data-date hook per bar, got: %s", out)
	}
	if !strings.Contains(out, "data-date=\"2026-08-01\"") || !strings.Contains(out, "class=\"drillable\"") {
		t.Fatalf("bar hook missing label value: %s", out)
	}

	plain, err := Bars(720, 240, []float64{5}, []string{"Mon"}, BarOpts{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(string(plain), "data-date") || strings.Contains(string(plain), "drillable") {
		t.Fatal("bars without DataAttr must stay inert")
	}
}

func TestBarsValidation(t *testing.T) {
	if _, err := Bars(720, 240, nil, nil, BarOpts{}); err == nil {
		t.Fatal("expected error for empty values")
	}
	if _, err := Bars(720, 240, []float64{1}, []string{"a", "b"}, BarOpts{}); err == nil {
		t.Fatal("expected error for label mismatch")
	}
}
