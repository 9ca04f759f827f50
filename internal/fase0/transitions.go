package fase0

import (
	"fmt"

	"valora/internal/models"
)

// statusTransitions is the document lifecycle. Progression is forward
// only: a signed, expired or cancelled document never changes status
// again, and a document cannot move backwards (no un-send, no un-view).
// The side exits (expired, cancelled) are open from any state before
// signed, drafts included.
var statusTransitions = map[models.DocumentStatus][]models.DocumentStatus{
	models.StatusDraft:     {models.StatusSent, models.StatusExpired, models.StatusCancelled},
	models.StatusSent:      {models.StatusViewed, models.StatusSigned, models.StatusExpired, models.StatusCancelled},
	models.StatusViewed:    {models.StatusSigned, models.StatusExpired, models.StatusCancelled},
	models.StatusSigned:    {},
	models.StatusExpired:   {},
	models.StatusCancelled: {},
}

func CanTransition(from, to models.DocumentStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from models.DocumentStatus) []models.DocumentStatus {
	next := statusTransitions[from]
	out := make([]models.DocumentStatus, len(next))
	copy(out, next)
	return out
}

func IsTerminal(s models.DocumentStatus) bool {
	return len(statusTransitions[s]) == 0
}

// TransitionError reports an attempted illegal document status change.
type TransitionError struct {
	From models.DocumentStatus
	To   models.DocumentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal document transition %s -> %s", e.From, e.To)
}

// Transition validates and returns the new status, rejecting anything the
// lifecycle table does not allow.
func Transition(from, to models.DocumentStatus) (models.DocumentStatus, error) {
	if !CanTransition(from, to) {
		return from, &TransitionError{From: from, To: to}
	}
	return to, nil
}
