package dashboard

import (
	"context"
	"log/slog"
)

// ProbeFunc reports whether a period holds any chartable data. It should be
// a cheap variant of the widget's own fetch.
type ProbeFunc func(ctx context.Context, period string) (bool, error)

// Prober answers "does this widget have data under ANY period" so an empty
// current period can be told apart from a truly empty account.
type Prober struct {
	logger *slog.Logger
}

// NewProber returns a prober logging swallowed failures through logger.
func NewProber(logger *slog.Logger) *Prober {
	return &Prober{logger: logger}
}

// HasAnyData probes the candidate periods in order and stops at the first
// hit. Probe failures are logged and treated as "no data" for that period;
// a failing probe never propagates an error to the widget.
func (p *Prober) HasAnyData(ctx context.Context, widget WidgetID, periods []string, probe ProbeFunc) bool {
	for _, period := range periods {
		ok, err := probe(ctx, period)
		if err != nil {
			p.logger.Warn("availability probe failed",
				slog.String("widget", string(widget)),
				slog.String("period", period),
				slog.String("error", err.Error()))
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
