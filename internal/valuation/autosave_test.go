package valuation

import (
	"context"
	"testing"
	"time"
)

func qualifyingSnap(extra map[Field]string) Snapshot {
	snap := Snapshot{
		FieldContactName: "Ana García",
		FieldEmail:       "ana@x.com",
		FieldCompanyName: "Acme SL",
	}
	for k, v := range extra {
		snap[k] = v
	}
	return snap
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}

func TestAutosaveQualifyGate(t *testing.T) {
	client := &recordingClient{}
	saver := NewAutosaver(client, nil, 10*time.Millisecond, time.Second)

	saver.NotifyEdit(Snapshot{FieldContactName: "Ana"})
	saver.NotifyEdit(Snapshot{FieldContactName: "Ana", FieldCompanyName: "Acme", FieldEmail: "no-at-sign"})
	time.Sleep(50 * time.Millisecond)
	if creates, updates, _ := client.counts(); creates != 0 || updates != 0 {
		t.Fatalf("non-qualifying edits saved: creates=%d updates=%d", creates, updates)
	}

	saver.NotifyEdit(qualifyingSnap(nil))
	waitFor(t, func() bool { creates, _, _ := client.counts(); return creates == 1 }, "initial create")
}

func TestAutosaveDebounceCoalesces(t *testing.T) {
	client := &recordingClient{}
	saver := NewAutosaver(client, nil, 30*time.Millisecond, time.Second)

	// A burst of edits inside the window collapses into one save.
	for i := 0; i < 10; i++ {
		saver.NotifyEdit(qualifyingSnap(map[Field]string{FieldRevenue: "500000"}))
		time.Sleep(2 * time.Millisecond)
	}
	waitFor(t, func() bool { creates, _, _ := client.counts(); return creates >= 1 }, "debounced save")
	time.Sleep(80 * time.Millisecond)
	if creates, updates, _ := client.counts(); creates != 1 || updates != 0 {
		t.Fatalf("burst produced creates=%d updates=%d, want a single create", creates, updates)
	}
}

func TestAutosaveCreateThenUpdate(t *testing.T) {
	client := &recordingClient{}
	saver := NewAutosaver(client, nil, 10*time.Millisecond, time.Second)

	saver.NotifyEdit(qualifyingSnap(nil))
	waitFor(t, func() bool { creates, _, _ := client.counts(); return creates == 1 }, "create")

	saver.NotifyEdit(qualifyingSnap(map[Field]string{FieldRevenue: "500000"}))
	waitFor(t, func() bool { _, updates, _ := client.counts(); return updates == 1 }, "update")

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.creates) != 1 {
		t.Fatalf("creates = %d, want 1", len(client.creates))
	}
	if client.creates[0] != client.updates[0] {
		t.Fatalf("update token %q differs from create token %q", client.updates[0], client.creates[0])
	}
	if client.creates[0] != saver.Token() {
		t.Fatalf("saver token %q differs from created token %q", saver.Token(), client.creates[0])
	}
}

func TestAutosaveFailureIsSilentAndRetried(t *testing.T) {
	client := &recordingClient{failAll: true}
	saver := NewAutosaver(client, nil, 10*time.Millisecond, time.Second)

	saver.NotifyEdit(qualifyingSnap(nil))
	time.Sleep(50 * time.Millisecond)
	if creates, _, _ := client.counts(); creates != 0 {
		t.Fatalf("create recorded despite failure")
	}

	// Backend recovers; the next edit saves and it is still the create.
	client.mu.Lock()
	client.failAll = false
	client.mu.Unlock()

	saver.NotifyEdit(qualifyingSnap(map[Field]string{FieldRevenue: "500000"}))
	waitFor(t, func() bool { creates, _, _ := client.counts(); return creates == 1 }, "retried create")
	if _, updates, _ := client.counts(); updates != 0 {
		t.Fatalf("update issued before a successful create")
	}
}

func TestFinalSaveExactlyOnce(t *testing.T) {
	client := &recordingClient{}
	saver := NewAutosaver(client, nil, time.Hour, time.Second)
	ctx := context.Background()

	in := Input{EBITDA: dec("100000")}
	result := Result{FinalValuation: dec("550000")}

	if err := saver.FinalSave(ctx, in, result); err != nil {
		t.Fatalf("FinalSave: %v", err)
	}
	if err := saver.FinalSave(ctx, in, result); err != nil {
		t.Fatalf("repeat FinalSave: %v", err)
	}
	if _, _, finals := client.counts(); finals != 1 {
		t.Fatalf("finals = %d, want 1", finals)
	}
	if !saver.DataSaved() {
		t.Fatalf("DataSaved = false after a successful final save")
	}
}

func TestFinalSaveCancelsPendingAutosave(t *testing.T) {
	client := &recordingClient{}
	saver := NewAutosaver(client, nil, 50*time.Millisecond, time.Second)

	saver.NotifyEdit(qualifyingSnap(nil))
	if err := saver.FinalSave(context.Background(), Input{}, Result{}); err != nil {
		t.Fatalf("FinalSave: %v", err)
	}
	time.Sleep(120 * time.Millisecond)
	if creates, updates, _ := client.counts(); creates != 0 || updates != 0 {
		t.Fatalf("autosave fired after the final save: creates=%d updates=%d", creates, updates)
	}
}

func TestResetStartsFreshSession(t *testing.T) {
	client := &recordingClient{}
	saver := NewAutosaver(client, nil, 10*time.Millisecond, time.Second)

	saver.NotifyEdit(qualifyingSnap(nil))
	waitFor(t, func() bool { creates, _, _ := client.counts(); return creates == 1 }, "first create")

	if err := saver.FinalSave(context.Background(), Input{}, Result{}); err != nil {
		t.Fatalf("FinalSave: %v", err)
	}

	before := saver.Token()
	saver.Reset()
	if saver.Token() == before {
		t.Fatalf("token unchanged after reset")
	}
	if saver.DataSaved() {
		t.Fatalf("DataSaved still true after reset")
	}

	// The next session creates its own record under the new token.
	saver.NotifyEdit(qualifyingSnap(map[Field]string{FieldCompanyName: "Beta SL"}))
	waitFor(t, func() bool { creates, _, _ := client.counts(); return creates == 2 }, "second create")
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.creates[0] == client.creates[1] {
		t.Fatalf("second session reused the first session's token")
	}
}
