package dashboard

import "testing"

func TestPanelBeginFinish(t *testing.T) {
	p := NewPanel(WidgetTotalSpent)
	if got := p.State().Phase; got != PhaseIdle {
		t.Fatalf("new panel phase = %v, want idle", got)
	}

	seq := p.Begin("monthly")
	if got := p.State().Phase; got != PhaseLoading {
		t.Fatalf("phase after Begin = %v, want loading", got)
	}
	if !p.Finish(seq, State{Phase: PhasePopulated, Period: "monthly"}) {
		t.Fatal("Finish rejected the current load")
	}
	if got := p.State().Phase; got != PhasePopulated {
		t.Fatalf("phase after Finish = %v, want populated", got)
	}
}

func TestPanelDropsStaleResult(t *testing.T) {
	p := NewPanel(WidgetTotalSpent)
	first := p.Begin("daily")
	second := p.Begin("weekly")

	if p.Finish(first, State{Phase: PhasePopulated, Period: "daily"}) {
		t.Fatal("stale result must be dropped")
	}
	if got := p.State().Phase; got != PhaseLoading {
		t.Fatalf("stale Finish mutated state to %v", got)
	}

	if !p.Finish(second, State{Phase: PhasePopulated, Period: "weekly"}) {
		t.Fatal("latest result must publish")
	}
	if got := p.State().Period; got != "weekly" {
		t.Fatalf("published period = %q, want weekly", got)
	}
}

func TestPanelRejectsReplayedSeq(t *testing.T) {
	p := NewPanel(WidgetShoppingDays)
	seq := p.Begin("month")
	if !p.Finish(seq, State{Phase: PhaseEmptyForPeriod, Period: "month"}) {
		t.Fatal("first Finish should publish")
	}
	if p.Finish(seq, State{Phase: PhaseError, Period: "month"}) {
		t.Fatal("replayed sequence must be rejected")
	}
	if got := p.State().Phase; got != PhaseEmptyForPeriod {
		t.Fatalf("replay mutated state to %v", got)
	}
}

func TestPanelClosedDropsEverything(t *testing.T) {
	p := NewPanel(WidgetDiet)
	seq := p.Begin("month")
	p.Close()
	if p.Finish(seq, State{Phase: PhasePopulated}) {
		t.Fatal("closed panel must drop results")
	}
}

func TestPhaseEmpty(t *testing.T) {
	if !PhaseEmptyNoData.Empty() || !PhaseEmptyForPeriod.Empty() {
		t.Fatal("empty phases should report Empty")
	}
	if PhasePopulated.Empty() || PhaseError.Empty() {
		t.Fatal("non-empty phases should not report Empty")
	}
}
