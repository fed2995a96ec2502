package svg

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	BarColor    string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	// DataAttr, when set, is emitted on each bar with the bar's label as its
	// value so scripts can open a drill-down for that bar.
	DataAttr string
}

// DonutOpts customises the donut chart renderer.
type DonutOpts struct {
	Title       string
	Description string
	CenterLabel string
	HoleColor   string
	LabelColor  string
	// Colors maps slice labels to fill colors; unspecified labels fall back
	// to the default palette.
	Colors map[string]string
	// DataAttr, when set, is emitted on each slice with the slice label as
	// its value so scripts can open a drill-down for that slice.
	DataAttr string
}

// LineOpts customises the smoothed line renderer.
type LineOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	ShowDots    bool
}

// MultiLineSeries is one named series on a shared label axis.
type MultiLineSeries struct {
	Name   string
	Color  string
	Values []float64
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 24.0
	DefaultTicks   = 4
)
