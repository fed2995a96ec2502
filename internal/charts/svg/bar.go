package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Fraction of each slot occupied by the bar; the remainder is spacing.
const barSlotFill = 0.65

// BarRect is one positioned bar inside the plot area.
type BarRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	Value  float64
}

// BarGeometry scales values into bars within a plot area. Heights are
// proportional to the series maximum; a series whose maximum is zero yields
// zero-height bars at the baseline rather than NaN or Inf.
func BarGeometry(values []float64, plotWidth, plotHeight float64) []BarRect {
	if len(values) == 0 || plotWidth <= 0 || plotHeight <= 0 {
		return nil
	}
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	slot := plotWidth / float64(len(values))
	barWidth := slot * barSlotFill
	bars := make([]BarRect, 0, len(values))
	for i, v := range values {
		height := 0.0
		if maxVal > 0 && v > 0 {
			height = v / maxVal * plotHeight
		}
		bars = append(bars, BarRect{
			X:      float64(i)*slot + (slot-barWidth)/2,
			Y:      plotHeight - height,
			Width:  barWidth,
			Height: height,
			Value:  v,
		})
	}
	return bars
}

// Bars renders a single-series bar chart for the given values and labels.
func Bars(width, height int, values []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
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
	barColor := fallback(opts.BarColor, "#7e5cff")
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")

	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	tickMax := maxVal
	if tickMax == 0 {
		tickMax = 1
	}

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Bar values"))))

	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := padding + chartHeight - ratio*chartHeight
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", padding, y, padding+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", padding-6, y+4, axisColor, template.HTMLEscapeString(formatTick(tickMax*ratio))))
	}

	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-hidden=\"true\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding, padding, padding+chartHeight))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding+chartHeight, padding+chartWidth, padding+chartHeight))
	b.WriteString("</g>")

	for i, bar := range BarGeometry(values, chartWidth, chartHeight) {
		hook := ""
		if opts.DataAttr != "" {
			hook = fmt.Sprintf(" %s=\"%s\" class=\"drillable\"", opts.DataAttr, template.HTMLEscapeString(labels[i]))
		}
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" rx=\"2\"%s aria-label=\"%s %s\"></rect>",
			padding+bar.X, padding+bar.Y, bar.Width, bar.Height, barColor, hook,
			template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(formatTick(bar.Value))))
		center := padding + bar.X + bar.Width/2
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", center, padding+chartHeight+14, axisColor, template.HTMLEscapeString(labels[i])))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
