package dashboard

import "sync"

// Phase is the lifecycle phase of a widget panel.
type Phase int

// Widget panel phases.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
	PhaseEmptyNoData
	PhaseEmptyForPeriod
	PhasePopulated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseEmptyNoData:
		return "empty_no_data"
	case PhaseEmptyForPeriod:
		return "empty_for_period"
	case PhasePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// Empty reports whether the phase is one of the two empty terminals.
func (p Phase) Empty() bool {
	return p == PhaseEmptyNoData || p == PhaseEmptyForPeriod
}

// State is the published state of one widget panel.
type State struct {
	Phase          Phase
	Period         string
	Message        string
	NoConnectivity bool
	View           View
}

// Template convenience accessors.

// IsPopulated reports a renderable chart body.
func (s State) IsPopulated() bool { return s.Phase == PhasePopulated }

// IsError reports a failed load.
func (s State) IsError() bool { return s.Phase == PhaseError }

// IsEmptyNoData reports an account with nothing to chart under any period.
func (s State) IsEmptyNoData() bool { return s.Phase == PhaseEmptyNoData }

// IsEmptyForPeriod reports an empty current period with data elsewhere.
func (s State) IsEmptyForPeriod() bool { return s.Phase == PhaseEmptyForPeriod }

// Panel owns the state of one widget and serializes concurrent loads.
// Each load is stamped with a sequence number at issue time; only the
// result carrying the latest stamp may publish. A slower response from an
// earlier load arriving after a newer one is dropped.
type Panel struct {
	id WidgetID

	mu      sync.Mutex
	issued  uint64
	applied uint64
	closed  bool
	state   State
}

// NewPanel returns an idle panel for the widget.
func NewPanel(id WidgetID) *Panel {
	return &Panel{
		id:    id,
		state: State{Phase: PhaseIdle, Period: DefaultPeriod(id)},
	}
}

// Begin transitions the panel to Loading for the period and returns the
// sequence stamp the caller must present to Finish.
func (p *Panel) Begin(period string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	if !p.closed {
		p.state = State{Phase: PhaseLoading, Period: period}
	}
	return p.issued
}

// Finish publishes a load result. It reports false when the result is
// stale (a newer load was issued or already applied) or the panel was
// closed, in which case the result is discarded.
func (p *Panel) Finish(seq uint64, s State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || seq != p.issued || seq <= p.applied {
		return false
	}
	p.applied = seq
	p.state = s
	return true
}

// State returns a copy of the current published state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Close marks the panel disposed. Later Finish calls become no-ops.
func (p *Panel) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
