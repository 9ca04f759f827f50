package fase0

import (
	"testing"

	"valora/internal/models"
)

func doc(t models.DocumentType, s models.DocumentStatus) models.Fase0Document {
	return models.Fase0Document{DocumentType: t, Status: s}
}

func TestPhaseStatus(t *testing.T) {
	tests := []struct {
		name string
		docs []models.Fase0Document
		want PhaseStatus
	}{
		{"no documents", nil, PhasePending},
		{"nda draft", []models.Fase0Document{doc(models.DocumentNDA, models.StatusDraft)}, PhaseActive},
		{"nda signed only", []models.Fase0Document{doc(models.DocumentNDA, models.StatusSigned)}, PhaseActive},
		{
			"nda and mandate signed",
			[]models.Fase0Document{
				doc(models.DocumentNDA, models.StatusSigned),
				doc(models.DocumentMandatoVenta, models.StatusSigned),
			},
			PhaseComplete,
		},
		{
			"mandate before nda signature",
			[]models.Fase0Document{
				doc(models.DocumentNDA, models.StatusSent),
				doc(models.DocumentMandatoVenta, models.StatusDraft),
			},
			PhaseBlocked,
		},
		{
			"mandate alone",
			[]models.Fase0Document{doc(models.DocumentMandatoVenta, models.StatusSent)},
			PhaseBlocked,
		},
		{
			"cancelled mandate does not block",
			[]models.Fase0Document{
				doc(models.DocumentNDA, models.StatusSent),
				doc(models.DocumentMandatoVenta, models.StatusCancelled),
			},
			PhaseActive,
		},
	}
	for _, tt := range tests {
		s := NewState(models.OperationVenta, tt.docs)
		if got := s.Status(); got != tt.want {
			t.Fatalf("%s: Status() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name string
		op   models.OperationType
		docs []models.Fase0Document
		want int
	}{
		{"nothing", models.OperationVenta, nil, 0},
		{"nda generated", models.OperationVenta, []models.Fase0Document{doc(models.DocumentNDA, models.StatusSent)}, 25},
		{"nda signed", models.OperationVenta, []models.Fase0Document{doc(models.DocumentNDA, models.StatusSigned)}, 50},
		{
			"nda signed, mandate generated",
			models.OperationVenta,
			[]models.Fase0Document{
				doc(models.DocumentNDA, models.StatusSigned),
				doc(models.DocumentMandatoVenta, models.StatusViewed),
			},
			75,
		},
		{
			"everything signed",
			models.OperationCompra,
			[]models.Fase0Document{
				doc(models.DocumentNDA, models.StatusSigned),
				doc(models.DocumentMandatoCompra, models.StatusSigned),
			},
			100,
		},
		{
			"wrong-side mandate earns nothing",
			models.OperationCompra,
			[]models.Fase0Document{
				doc(models.DocumentNDA, models.StatusSigned),
				doc(models.DocumentMandatoVenta, models.StatusSigned),
			},
			50,
		},
		{
			"expired nda earns nothing",
			models.OperationVenta,
			[]models.Fase0Document{doc(models.DocumentNDA, models.StatusExpired)},
			0,
		},
	}
	for _, tt := range tests {
		s := NewState(tt.op, tt.docs)
		got := s.Progress()
		if got != tt.want {
			t.Fatalf("%s: Progress() = %d, want %d", tt.name, got, tt.want)
		}
		switch got {
		case 0, 25, 50, 75, 100:
		default:
			t.Fatalf("%s: Progress() = %d, not a threshold value", tt.name, got)
		}
	}
}

// Progress never decreases as a document moves forward through its
// lifecycle.
func TestProgressMonotonic(t *testing.T) {
	forward := []models.DocumentStatus{
		models.StatusDraft, models.StatusSent, models.StatusViewed, models.StatusSigned,
	}
	prev := -1
	for _, st := range forward {
		s := NewState(models.OperationVenta, []models.Fase0Document{doc(models.DocumentNDA, st)})
		p := s.Progress()
		if p < prev {
			t.Fatalf("progress dropped from %d to %d at status %s", prev, p, st)
		}
		prev = p
	}
}

func TestSuggestedDocument(t *testing.T) {
	s := NewState(models.OperationVenta, nil)
	if got, ok := s.SuggestedDocument(); !ok || got != models.DocumentNDA {
		t.Fatalf("empty set suggested %q, want nda", got)
	}

	s = NewState(models.OperationVenta, []models.Fase0Document{doc(models.DocumentNDA, models.StatusSent)})
	if got, ok := s.SuggestedDocument(); !ok || got != models.DocumentNDA {
		t.Fatalf("unsigned nda suggested %q, want nda", got)
	}

	s = NewState(models.OperationCompra, []models.Fase0Document{doc(models.DocumentNDA, models.StatusSigned)})
	if got, ok := s.SuggestedDocument(); !ok || got != models.DocumentMandatoCompra {
		t.Fatalf("buy-side suggested %q, want mandato_compra", got)
	}

	s = NewState(models.OperationCompra, []models.Fase0Document{
		doc(models.DocumentNDA, models.StatusSigned),
		doc(models.DocumentMandatoCompra, models.StatusDraft),
	})
	if _, ok := s.SuggestedDocument(); ok {
		t.Fatalf("suggestion made with everything already generated")
	}
}

func TestRequirementsMarkInapplicableMandate(t *testing.T) {
	s := NewState(models.OperationVenta, []models.Fase0Document{doc(models.DocumentNDA, models.StatusSigned)})
	req := s.Requirements()
	if req[models.DocumentMandatoCompra] != RequirementNotApplicable {
		t.Fatalf("purchase mandate = %s, want na", req[models.DocumentMandatoCompra])
	}
	if req[models.DocumentMandatoVenta] != RequirementPending {
		t.Fatalf("sale mandate = %s, want pending", req[models.DocumentMandatoVenta])
	}
	if req[models.DocumentNDA] != RequirementSigned {
		t.Fatalf("nda = %s, want signed", req[models.DocumentNDA])
	}
}

func TestCanAdvanceToStatus(t *testing.T) {
	rules := DefaultRules()

	s := NewState(models.OperationVenta, nil)
	if d := s.CanAdvanceToStatus("activa", rules); d.Allowed {
		t.Fatalf("advance to activa allowed without signed nda")
	} else if d.Reason == "" {
		t.Fatalf("refusal carried no reason")
	}

	s = NewState(models.OperationVenta, []models.Fase0Document{doc(models.DocumentNDA, models.StatusSigned)})
	if d := s.CanAdvanceToStatus("activa", rules); !d.Allowed {
		t.Fatalf("advance to activa refused with signed nda: %s", d.Reason)
	}
	if d := s.CanAdvanceToStatus("negociacion", rules); d.Allowed {
		t.Fatalf("advance to negociacion allowed without signed mandate")
	}

	// A buy-side lead is not gated by the sell-side mandate rule.
	s = NewState(models.OperationCompra, []models.Fase0Document{
		doc(models.DocumentNDA, models.StatusSigned),
		doc(models.DocumentMandatoCompra, models.StatusSigned),
	})
	if d := s.CanAdvanceToStatus("negociacion", rules); !d.Allowed {
		t.Fatalf("buy-side advance refused: %s", d.Reason)
	}

	// Unlisted target statuses are never blocked.
	s = NewState(models.OperationVenta, nil)
	if d := s.CanAdvanceToStatus("valoracion", rules); !d.Allowed {
		t.Fatalf("unlisted status blocked: %s", d.Reason)
	}

	// Inactive rules are ignored.
	inactive := DefaultRules()
	for i := range inactive {
		inactive[i].Active = false
	}
	if d := s.CanAdvanceToStatus("activa", inactive); !d.Allowed {
		t.Fatalf("inactive rule still blocked: %s", d.Reason)
	}
}

func TestTransitions(t *testing.T) {
	allowed := []struct{ from, to models.DocumentStatus }{
		{models.StatusDraft, models.StatusSent},
		{models.StatusDraft, models.StatusExpired},
		{models.StatusDraft, models.StatusCancelled},
		{models.StatusSent, models.StatusViewed},
		{models.StatusSent, models.StatusSigned},
		{models.StatusSent, models.StatusExpired},
		{models.StatusViewed, models.StatusSigned},
		{models.StatusViewed, models.StatusCancelled},
	}
	for _, tt := range allowed {
		if _, err := Transition(tt.from, tt.to); err != nil {
			t.Fatalf("Transition(%s, %s) rejected: %v", tt.from, tt.to, err)
		}
	}

	illegal := []struct{ from, to models.DocumentStatus }{
		{models.StatusDraft, models.StatusViewed},
		{models.StatusDraft, models.StatusSigned},
		{models.StatusSigned, models.StatusDraft},
		{models.StatusSigned, models.StatusCancelled},
		{models.StatusViewed, models.StatusSent},
		{models.StatusExpired, models.StatusSent},
		{models.StatusCancelled, models.StatusDraft},
	}
	for _, tt := range illegal {
		if _, err := Transition(tt.from, tt.to); err == nil {
			t.Fatalf("Transition(%s, %s) accepted", tt.from, tt.to)
		}
	}

	for _, s := range []models.DocumentStatus{models.StatusSigned, models.StatusExpired, models.StatusCancelled} {
		if !IsTerminal(s) {
			t.Fatalf("%s not terminal", s)
		}
	}
}
