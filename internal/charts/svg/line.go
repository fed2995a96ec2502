package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Point is a positioned sample on the plot.
type Point struct {
	X float64
	Y float64
}

// SmoothPath builds a cubic path through the points. Each segment's control
// points sit at the horizontal midpoint between adjacent points, held at each
// endpoint's own y, producing a smoothed S-curve rather than a true spline.
// A single point yields a bare moveto; the renderer draws it as a dot.
func SmoothPath(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("M%.2f %.2f", points[0].X, points[0].Y))
	for i := 1; i < len(points); i++ {
		prev := points[i-1]
		cur := points[i]
		mid := (prev.X + cur.X) / 2
		b.WriteString(fmt.Sprintf(" C%.2f %.2f %.2f %.2f %.2f %.2f", mid, prev.Y, mid, cur.Y, cur.X, cur.Y))
	}
	return b.String()
}

// SmoothedLines renders one or more smoothed series over a shared label axis.
// Series must match the label count; sparse samples are expected to be
// filtered out by the caller before rendering, never interpolated here.
func SmoothedLines(width, height int, labels []string, series []MultiLineSeries, opts LineOpts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(series) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Name)
		}
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")

	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	minVal, maxVal := seriesBounds(series)
	if minVal > 0 {
		minVal = 0
	}
	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}
	scale := chartHeight / (maxVal - minVal)

	step := 0.0
	if len(labels) > 1 {
		step = chartWidth / float64(len(labels)-1)
	}
	xAt := func(i int) float64 {
		if len(labels) > 1 {
			return padding + float64(i)*step
		}
		return padding + chartWidth/2
	}
	yAt := func(v float64) float64 {
		return padding + chartHeight - (v-minVal)*scale
	}

	titleID := makeID(opts.Title, "line-title")
	descID := makeID(opts.Title, "line-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Line chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Trend data"))))

	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := padding + chartHeight - ratio*chartHeight
		value := minVal + (maxVal-minVal)*ratio
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", padding, y, padding+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", padding-6, y+4, axisColor, template.HTMLEscapeString(formatTick(value))))
	}

	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-hidden=\"true\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding, padding, padding+chartHeight))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding+chartHeight, padding+chartWidth, padding+chartHeight))
	b.WriteString("</g>")

	for si, s := range series {
		color := fallback(s.Color, donutPalette[si%len(donutPalette)])
		points := make([]Point, 0, len(s.Values))
		for i, v := range s.Values {
			points = append(points, Point{X: xAt(i), Y: yAt(v)})
		}
		if len(points) == 1 {
			b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"4\" fill=\"%s\" aria-label=\"%s\"></circle>", points[0].X, points[0].Y, color, template.HTMLEscapeString(s.Name)))
			continue
		}
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\" aria-label=\"%s\"></path>",
			SmoothPath(points), color, template.HTMLEscapeString(s.Name)))
		if opts.ShowDots {
			for _, p := range points {
				b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"></circle>", p.X, p.Y, color))
			}
		}
	}

	for i, label := range labels {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", xAt(i), padding+chartHeight+14, axisColor, template.HTMLEscapeString(label)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func seriesBounds(series []MultiLineSeries) (float64, float64) {
	first := true
	minVal := 0.0
	maxVal := 0.0
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		lo, hi := bounds(s.Values)
		if first {
			minVal, maxVal = lo, hi
			first = false
			continue
		}
		if lo < minVal {
			minVal = lo
		}
		if hi > maxVal {
			maxVal = hi
		}
	}
	return minVal, maxVal
}
