// Package pipeline defines the deal pipeline status taxonomy and the
// moves the kanban board allows between statuses.
package pipeline

// Pipeline statuses in board order. ganada and perdida are terminal.
const (
	StatusNueva        = "nueva"
	StatusValoracion   = "valoracion"
	StatusFase0        = "fase0"
	StatusActiva       = "activa"
	StatusNegociacion  = "negociacion"
	StatusDueDiligence = "due_diligence"
	StatusCierre       = "cierre"
	StatusGanada       = "ganada"
	StatusPerdida      = "perdida"
)

// Column is one kanban lane.
type Column struct {
	Status   string `json:"status"`
	Title    string `json:"title"`
	Terminal bool   `json:"terminal"`
}

var columns = []Column{
	{Status: StatusNueva, Title: "Nueva"},
	{Status: StatusValoracion, Title: "Valoración"},
	{Status: StatusFase0, Title: "Fase 0"},
	{Status: StatusActiva, Title: "Activa"},
	{Status: StatusNegociacion, Title: "Negociación"},
	{Status: StatusDueDiligence, Title: "Due diligence"},
	{Status: StatusCierre, Title: "Cierre"},
	{Status: StatusGanada, Title: "Ganada", Terminal: true},
	{Status: StatusPerdida, Title: "Perdida", Terminal: true},
}

// Columns returns the board lanes in display order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Statuses returns every known status in board order.
func Statuses() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Status
	}
	return out
}

func IsKnown(status string) bool {
	for _, c := range columns {
		if c.Status == status {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	for _, c := range columns {
		if c.Status == status {
			return c.Terminal
		}
	}
	return false
}

// transitions lists the moves the board permits. A deal advances one
// stage at a time, can be sent back for rework from any active stage,
// and can be lost from anywhere that is not already terminal. Wins only
// happen from cierre.
var transitions = map[string][]string{
	StatusNueva:        {StatusValoracion, StatusFase0, StatusPerdida},
	StatusValoracion:   {StatusFase0, StatusNueva, StatusPerdida},
	StatusFase0:        {StatusActiva, StatusValoracion, StatusPerdida},
	StatusActiva:       {StatusNegociacion, StatusFase0, StatusPerdida},
	StatusNegociacion:  {StatusDueDiligence, StatusActiva, StatusPerdida},
	StatusDueDiligence: {StatusCierre, StatusNegociacion, StatusPerdida},
	StatusCierre:       {StatusGanada, StatusDueDiligence, StatusPerdida},
	StatusGanada:       {},
	StatusPerdida:      {},
}

// CanMove reports whether the board allows the from -> to move.
func CanMove(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from string) []string {
	next := transitions[from]
	out := make([]string, len(next))
	copy(out, next)
	return out
}
