package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

const (
	// Angular gap between adjacent slices.
	sliceGapDegrees = 3.0
	// Sweep used when exactly one slice carries the whole total; a full 360°
	// arc would collapse into a zero-length path.
	singleSliceSweep = 357.0
)

// Slice is one category share of the donut total.
type Slice struct {
	Label string
	Value float64
}

// SliceArc is the rendered geometry of one slice. A zero-valued slice keeps
// its legend entry but has Sweep 0 and an empty Path.
type SliceArc struct {
	Label      string
	Value      float64
	Fraction   float64
	StartAngle float64
	Sweep      float64
	Path       string
}

// DonutGeometry lays out slices clockwise from 12 o'clock, each spanning its
// share of 360° minus the inter-slice gap. A zero total yields no arcs.
func DonutGeometry(slices []Slice, cx, cy, outerRadius float64) []SliceArc {
	total := 0.0
	nonZero := 0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
			nonZero++
		}
	}
	if total <= 0 {
		return nil
	}

	arcs := make([]SliceArc, 0, len(slices))
	cursor := 0.0
	for _, s := range slices {
		fraction := 0.0
		if s.Value > 0 {
			fraction = s.Value / total
		}
		span := fraction * 360
		sweep := span - sliceGapDegrees
		if nonZero == 1 && s.Value > 0 {
			sweep = singleSliceSweep
		}
		if sweep < 0 {
			sweep = 0
		}
		arc := SliceArc{
			Label:      s.Label,
			Value:      s.Value,
			Fraction:   fraction,
			StartAngle: cursor,
			Sweep:      sweep,
		}
		if sweep > 0 {
			arc.Path = arcPath(cx, cy, outerRadius, cursor, sweep)
		}
		arcs = append(arcs, arc)
		cursor += span
	}
	return arcs
}

// arcPath builds a closed center-edge-arc-center path. Angles are degrees
// clockwise from 12 o'clock.
func arcPath(cx, cy, r, start, sweep float64) string {
	x1, y1 := polar(cx, cy, r, start)
	x2, y2 := polar(cx, cy, r, start+sweep)
	largeArc := 0
	if sweep > 180 {
		largeArc = 1
	}
	return fmt.Sprintf("M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z", cx, cy, x1, y1, r, r, largeArc, x2, y2)
}

func polar(cx, cy, r, degrees float64) (float64, float64) {
	rad := degrees * math.Pi / 180
	return cx + r*math.Sin(rad), cy - r*math.Cos(rad)
}

var donutPalette = []string{"#7e5cff", "#0ea5e9", "#f97316", "#22c55e", "#eab308", "#ec4899", "#14b8a6", "#94a3b8"}

// Donut renders a donut chart with a punched hole hosting a centered label.
// An all-zero input renders nothing drawable (empty state is the caller's job).
func Donut(width, height int, slices []Slice, opts DonutOpts) (template.HTML, error) {
	if width <= 0 {
		width = DefaultHeight
	}
	if height <= 0 {
		height = DefaultHeight
	}
	cx := float64(width) / 2
	cy := float64(height) / 2
	outer := math.Min(cx, cy) - 8
	if outer <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	inner := outer * 0.62
	holeColor := fallback(opts.HoleColor, "#ffffff")
	labelColor := fallback(opts.LabelColor, "#0f172a")

	titleID := makeID(opts.Title, "donut-title")
	descID := makeID(opts.Title, "donut-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Donut chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Category breakdown"))))

	for i, arc := range DonutGeometry(slices, cx, cy, outer) {
		if arc.Path == "" {
			continue
		}
		color := opts.Colors[arc.Label]
		if color == "" {
			color = donutPalette[i%len(donutPalette)]
		}
		hook := ""
		if opts.DataAttr != "" {
			hook = fmt.Sprintf(" %s=\"%s\" class=\"drillable\"", opts.DataAttr, template.HTMLEscapeString(arc.Label))
		}
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\"%s aria-label=\"%s %.1f%%\"></path>",
			arc.Path, color, hook, template.HTMLEscapeString(arc.Label), arc.Fraction*100))
	}

	b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" aria-hidden=\"true\"></circle>", cx, cy, inner, holeColor))
	if opts.CenterLabel != "" {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"16\" font-weight=\"600\" text-anchor=\"middle\" dominant-baseline=\"middle\">%s</text>",
			cx, cy, labelColor, template.HTMLEscapeString(opts.CenterLabel)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
