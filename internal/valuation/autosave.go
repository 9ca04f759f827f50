package valuation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Snapshot is the raw field state shipped on each autosave tick. The full
// snapshot is sent every time, so a field the user emptied overwrites the
// previously saved value; that matches the product's current behavior.
type Snapshot map[Field]string

// IdentityFields is the minimal payload for the record-creating first save.
type IdentityFields struct {
	ContactName string
	Email       string
	CompanyName string
}

// PersistenceClient is the remote collaborator behind progressive saves.
// CreateInitialValuation registers the session under the client-generated
// token and echoes the token under which the record was stored.
type PersistenceClient interface {
	CreateInitialValuation(ctx context.Context, token string, fields IdentityFields) (string, error)
	UpdateValuation(ctx context.Context, token string, snap Snapshot) error
	SaveValuation(ctx context.Context, token string, in Input, result Result) error
}

// debouncer coalesces bursts of edits into one delayed callback. Each
// Schedule cancels the previous pending callback (last edit wins).
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
}

func (d *debouncer) Schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, fn)
}

func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Autosaver persists calculator state while the user types. The first
// qualifying save creates the backend record; every later one updates it
// under the same session token, so a session never yields more than one
// record. Autosave failures are logged and silently retried on the next
// edit; only the final authoritative save surfaces errors.
type Autosaver struct {
	client  PersistenceClient
	logger  *zap.Logger
	window  time.Duration
	timeout time.Duration

	debounce debouncer

	mu        sync.Mutex
	token     string
	created   bool
	inFlight  bool
	pending   Snapshot
	seq       uint64
	dataSaved bool
}

const (
	DefaultDebounceWindow = 2 * time.Second
	DefaultRequestTimeout = 15 * time.Second
)

func NewAutosaver(client PersistenceClient, logger *zap.Logger, window, timeout time.Duration) *Autosaver {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autosaver{
		client:  client,
		logger:  logger,
		window:  window,
		timeout: timeout,
		token:   uuid.NewString(),
	}
}

func (a *Autosaver) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *Autosaver) DataSaved() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dataSaved
}

// NotifyEdit records the latest snapshot and (re)starts the debounce
// window when the snapshot qualifies for saving. The qualify gate is
// deliberately looser than full field validation: name, company and an
// email containing "@" are enough to create a lead-worthy record.
func (a *Autosaver) NotifyEdit(snap Snapshot) {
	if a == nil || a.client == nil {
		return
	}
	if !Qualifies(snap) {
		return
	}
	a.mu.Lock()
	a.pending = snap
	a.seq++
	a.mu.Unlock()

	a.debounce.Schedule(a.window, a.flush)
}

func Qualifies(snap Snapshot) bool {
	name := strings.TrimSpace(snap[FieldContactName])
	email := strings.TrimSpace(snap[FieldEmail])
	company := strings.TrimSpace(snap[FieldCompanyName])
	return name != "" && company != "" && email != "" && strings.Contains(email, "@")
}

// flush performs one save. Only one save runs at a time; the first one is
// always the create, and updates are issued only after the create's
// response carried the token back (keeps the create→update order causal).
func (a *Autosaver) flush() {
	a.mu.Lock()
	if a.inFlight || a.pending == nil {
		a.mu.Unlock()
		return
	}
	a.inFlight = true
	snap := a.pending
	seq := a.seq
	token := a.token
	created := a.created
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	var err error
	if !created {
		var echoed string
		echoed, err = a.client.CreateInitialValuation(ctx, token, IdentityFields{
			ContactName: strings.TrimSpace(snap[FieldContactName]),
			Email:       strings.TrimSpace(snap[FieldEmail]),
			CompanyName: strings.TrimSpace(snap[FieldCompanyName]),
		})
		if err == nil {
			a.mu.Lock()
			a.created = true
			if echoed != "" {
				a.token = echoed
			}
			a.mu.Unlock()
		}
	} else {
		err = a.client.UpdateValuation(ctx, token, snap)
	}

	a.mu.Lock()
	a.inFlight = false
	stale := a.seq != seq
	a.mu.Unlock()

	if err != nil {
		// Silent recovery: the next qualifying edit reschedules a save.
		a.logger.Warn("valuation autosave failed", zap.String("token", token), zap.Error(err))
		return
	}
	if stale {
		// Edits arrived while this save was in flight; push them too.
		a.debounce.Schedule(a.window, a.flush)
	}
}

// FinalSave is the save-of-record issued once when the wizard reaches the
// results step. Unlike autosave ticks its failure is returned to the
// caller. Repeat calls after a success are no-ops.
func (a *Autosaver) FinalSave(ctx context.Context, in Input, result Result) error {
	if a == nil || a.client == nil {
		return nil
	}
	a.mu.Lock()
	if a.dataSaved {
		a.mu.Unlock()
		return nil
	}
	token := a.token
	a.mu.Unlock()

	a.debounce.Cancel()

	if err := a.client.SaveValuation(ctx, token, in, result); err != nil {
		return err
	}

	a.mu.Lock()
	a.dataSaved = true
	a.mu.Unlock()
	return nil
}

// Reset abandons the current session: pending saves are cancelled and a
// fresh token is issued so the next session creates its own record.
func (a *Autosaver) Reset() {
	a.debounce.Cancel()
	a.mu.Lock()
	a.token = uuid.NewString()
	a.created = false
	a.pending = nil
	a.dataSaved = false
	a.mu.Unlock()
}
