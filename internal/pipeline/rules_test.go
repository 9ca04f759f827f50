package pipeline

import "testing"

func TestColumnsCoverStatuses(t *testing.T) {
	cols := Columns()
	if len(cols) != 9 {
		t.Fatalf("columns = %d, want 9", len(cols))
	}
	if cols[0].Status != StatusNueva || cols[len(cols)-1].Status != StatusPerdida {
		t.Fatalf("board order wrong: first %s, last %s", cols[0].Status, cols[len(cols)-1].Status)
	}
	for _, s := range Statuses() {
		if !IsKnown(s) {
			t.Fatalf("%s not known", s)
		}
	}
	if IsKnown("bogus") {
		t.Fatalf("unknown status accepted")
	}
}

func TestCanMove(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusNueva, StatusValoracion},
		{StatusNueva, StatusFase0},
		{StatusValoracion, StatusFase0},
		{StatusFase0, StatusActiva},
		{StatusActiva, StatusNegociacion},
		{StatusNegociacion, StatusDueDiligence},
		{StatusDueDiligence, StatusCierre},
		{StatusCierre, StatusGanada},
		{StatusActiva, StatusFase0},
		{StatusNegociacion, StatusPerdida},
	}
	for _, tt := range allowed {
		if !CanMove(tt.from, tt.to) {
			t.Fatalf("CanMove(%s, %s) = false", tt.from, tt.to)
		}
	}

	refused := []struct{ from, to string }{
		{StatusNueva, StatusGanada},
		{StatusNueva, StatusNegociacion},
		{StatusValoracion, StatusGanada},
		{StatusActiva, StatusGanada},
		{StatusGanada, StatusPerdida},
		{StatusPerdida, StatusNueva},
		{StatusCierre, StatusNueva},
		{StatusNueva, StatusNueva},
	}
	for _, tt := range refused {
		if CanMove(tt.from, tt.to) {
			t.Fatalf("CanMove(%s, %s) = true", tt.from, tt.to)
		}
	}
}

func TestTerminalStatusesHaveNoMoves(t *testing.T) {
	for _, s := range Statuses() {
		if IsTerminal(s) != (len(NextStatuses(s)) == 0) {
			t.Fatalf("%s: terminal flag and transition table disagree", s)
		}
	}
	if !IsTerminal(StatusGanada) || !IsTerminal(StatusPerdida) {
		t.Fatalf("ganada/perdida not terminal")
	}
}
