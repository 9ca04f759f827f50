package valuation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// recordingClient captures persistence calls for assertions.
type recordingClient struct {
	mu      sync.Mutex
	creates []string
	updates []string
	finals  []string
	failAll bool
}

func (r *recordingClient) CreateInitialValuation(ctx context.Context, token string, fields IdentityFields) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return "", context.DeadlineExceeded
	}
	r.creates = append(r.creates, token)
	return token, nil
}

func (r *recordingClient) UpdateValuation(ctx context.Context, token string, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return context.DeadlineExceeded
	}
	r.updates = append(r.updates, token)
	return nil
}

func (r *recordingClient) SaveValuation(ctx context.Context, token string, in Input, result Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finals = append(r.finals, token)
	return nil
}

func (r *recordingClient) counts() (creates, updates, finals int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.creates), len(r.updates), len(r.finals)
}

type countingTable struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTable) LookupMultiple(ctx context.Context, sector, employeeRange string) (decimal.Decimal, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return decimal.NewFromFloat(5.5), nil
}

// newTestCalculator wires a calculator whose autosave window is long
// enough that only explicit waits can observe debounce flushes.
func newTestCalculator(client *recordingClient, table MultipleTable) *Calculator {
	saver := NewAutosaver(client, nil, time.Hour, time.Second)
	return NewCalculator(&Engine{RangeBand: 0.15}, table, saver)
}

func fillStep1(c *Calculator) {
	c.UpdateField(FieldContactName, "Ana García")
	c.UpdateField(FieldCompanyName, "Acme SL")
	c.UpdateField(FieldCIF, "B12345674")
	c.UpdateField(FieldEmail, "ana@x.com")
	c.UpdateField(FieldPhone, "+34612345678")
	c.UpdateField(FieldIndustry, "tecnologia")
	c.UpdateField(FieldEmployeeRange, "6-25")
}

func TestNextStepBlockedByValidation(t *testing.T) {
	table := &countingTable{}
	c := newTestCalculator(&recordingClient{}, table)

	c.UpdateField(FieldContactName, "Ana")
	c.UpdateField(FieldEmail, "not-an-email")

	advanced, err := c.NextStep(context.Background())
	if err != nil {
		t.Fatalf("NextStep: %v", err)
	}
	if advanced {
		t.Fatalf("advanced past an invalid step")
	}
	if c.CurrentStep() != Step1BasicInfo {
		t.Fatalf("step = %d, want Step1", c.CurrentStep())
	}
	if table.calls != 0 {
		t.Fatalf("engine ran despite blocked step")
	}
	// The failed attempt makes untouched fields show their messages.
	if msg := c.FieldError(FieldEmail); msg == "" {
		t.Fatalf("no error shown for invalid email after failed advance")
	}
	if msg := c.FieldError(FieldCIF); msg == "" {
		t.Fatalf("no error shown for missing CIF after failed advance")
	}
}

func TestFieldErrorsHiddenUntilTouched(t *testing.T) {
	c := newTestCalculator(&recordingClient{}, &countingTable{})

	c.UpdateField(FieldEmail, "bad")
	if msg := c.FieldError(FieldEmail); msg != "" {
		t.Fatalf("untouched field showed error %q", msg)
	}
	c.HandleFieldBlur(FieldEmail)
	if msg := c.FieldError(FieldEmail); msg == "" {
		t.Fatalf("touched invalid field showed no error")
	}
	c.UpdateField(FieldEmail, "ana@x.com")
	if msg := c.FieldError(FieldEmail); msg != "" {
		t.Fatalf("valid field showed error %q", msg)
	}
}

func TestWizardEndToEnd(t *testing.T) {
	client := &recordingClient{}
	c := newTestCalculator(client, &countingTable{})
	ctx := context.Background()

	fillStep1(c)
	if !c.IsCurrentStepValid() {
		t.Fatalf("step 1 invalid: email=%q cif=%q", c.FieldError(FieldEmail), c.FieldError(FieldCIF))
	}
	if ok, err := c.NextStep(ctx); !ok || err != nil {
		t.Fatalf("advance to step 2: ok=%v err=%v", ok, err)
	}

	c.UpdateField(FieldRevenue, "500000")
	c.UpdateField(FieldEBITDA, "100000")
	if ok, err := c.NextStep(ctx); !ok || err != nil {
		t.Fatalf("advance to step 3: ok=%v err=%v", ok, err)
	}

	c.UpdateField(FieldLocation, "Madrid")
	c.UpdateField(FieldOwnership, "alta")
	if ok, err := c.NextStep(ctx); !ok || err != nil {
		t.Fatalf("advance to step 4: ok=%v err=%v", ok, err)
	}
	if c.CurrentStep() != Step4Results {
		t.Fatalf("step = %d, want Step4", c.CurrentStep())
	}
	if c.IsCalculating() {
		t.Fatalf("still calculating after results")
	}

	result := c.Result()
	if result == nil {
		t.Fatalf("no result on step 4")
	}
	if !result.FinalValuation.Equal(dec("550000")) {
		t.Fatalf("FinalValuation = %s, want 550000", result.FinalValuation)
	}
	if !result.ValuationLow.LessThan(result.FinalValuation) ||
		!result.FinalValuation.LessThan(result.ValuationHigh) {
		t.Fatalf("range does not bracket the point estimate: [%s, %s, %s]",
			result.ValuationLow, result.FinalValuation, result.ValuationHigh)
	}

	// Exactly one authoritative save, and repeat NextStep calls on the
	// results step never produce another.
	if _, _, finals := client.counts(); finals != 1 {
		t.Fatalf("finals = %d, want 1", finals)
	}
	if ok, _ := c.NextStep(ctx); ok {
		t.Fatalf("advanced past the results step")
	}
	if _, _, finals := client.counts(); finals != 1 {
		t.Fatalf("finals after repeat = %d, want 1", finals)
	}
}

func TestAdjustmentsRequireAmount(t *testing.T) {
	c := newTestCalculator(&recordingClient{}, &countingTable{})
	ctx := context.Background()

	fillStep1(c)
	if ok, _ := c.NextStep(ctx); !ok {
		t.Fatalf("step 1 did not advance")
	}
	c.UpdateField(FieldRevenue, "500000")
	c.UpdateField(FieldEBITDA, "100000")
	c.UpdateField(FieldHasAdjustments, "true")
	if ok, _ := c.NextStep(ctx); ok {
		t.Fatalf("advanced with adjustments enabled but no amount")
	}
	c.UpdateField(FieldAdjustmentAmount, "25000")
	if ok, _ := c.NextStep(ctx); !ok {
		t.Fatalf("did not advance once the amount was set")
	}
}

func TestPrevStepKeepsFields(t *testing.T) {
	c := newTestCalculator(&recordingClient{}, &countingTable{})
	ctx := context.Background()

	fillStep1(c)
	if ok, _ := c.NextStep(ctx); !ok {
		t.Fatalf("step 1 did not advance")
	}
	c.UpdateField(FieldRevenue, "500000")
	if !c.PrevStep() {
		t.Fatalf("PrevStep failed")
	}
	if c.CurrentStep() != Step1BasicInfo {
		t.Fatalf("step = %d, want Step1", c.CurrentStep())
	}
	if c.Field(FieldRevenue) != "500000" || c.Field(FieldContactName) != "Ana García" {
		t.Fatalf("back navigation lost field values")
	}
	if c.PrevStep() {
		t.Fatalf("PrevStep succeeded on the first step")
	}
}

func TestResetRotatesToken(t *testing.T) {
	client := &recordingClient{}
	saver := NewAutosaver(client, nil, time.Hour, time.Second)
	c := NewCalculator(&Engine{}, &countingTable{}, saver)

	fillStep1(c)
	before := saver.Token()
	c.Reset()
	after := saver.Token()
	if before == after {
		t.Fatalf("token not rotated on reset")
	}
	if c.Field(FieldContactName) != "" || c.CurrentStep() != Step1BasicInfo {
		t.Fatalf("reset did not clear wizard state")
	}
}
