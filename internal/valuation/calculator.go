package valuation

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"valora/internal/validation"
)

// Step identifies a wizard step. Progression is strictly linear; back
// navigation is always allowed and never loses data.
type Step int

const (
	Step1BasicInfo Step = iota + 1
	Step2Financial
	Step3Characteristics
	Step4Results
)

type Field string

const (
	FieldContactName          Field = "contactName"
	FieldCompanyName          Field = "companyName"
	FieldCIF                  Field = "cif"
	FieldEmail                Field = "email"
	FieldPhone                Field = "phone"
	FieldIndustry             Field = "industry"
	FieldEmployeeRange        Field = "employeeRange"
	FieldYearsOfOperation     Field = "yearsOfOperation"
	FieldRevenue              Field = "revenue"
	FieldEBITDA               Field = "ebitda"
	FieldHasAdjustments       Field = "hasAdjustments"
	FieldAdjustmentAmount     Field = "adjustmentAmount"
	FieldLocation             Field = "location"
	FieldOwnership            Field = "ownershipParticipation"
	FieldCompetitiveAdvantage Field = "competitiveAdvantage"
)

var knownFields = map[Field]bool{
	FieldContactName: true, FieldCompanyName: true, FieldCIF: true,
	FieldEmail: true, FieldPhone: true, FieldIndustry: true,
	FieldEmployeeRange: true, FieldYearsOfOperation: true,
	FieldRevenue: true, FieldEBITDA: true, FieldHasAdjustments: true,
	FieldAdjustmentAmount: true, FieldLocation: true, FieldOwnership: true,
	FieldCompetitiveAdvantage: true,
}

var stepRequiredFields = map[Step][]Field{
	Step1BasicInfo: {
		FieldContactName, FieldCompanyName, FieldCIF, FieldEmail,
		FieldPhone, FieldIndustry, FieldEmployeeRange,
	},
	Step2Financial:       {FieldRevenue, FieldEBITDA},
	Step3Characteristics: {FieldLocation, FieldOwnership},
	Step4Results:         {},
}

// Calculator drives the four-step valuation wizard. It owns raw field
// values (as entered), per-field touched state and the step cursor; the
// arithmetic lives in Engine and persistence in Autosaver.
type Calculator struct {
	mu sync.Mutex

	engine *Engine
	table  MultipleTable
	saver  *Autosaver

	step           Step
	fields         map[Field]string
	touched        map[Field]bool
	showValidation bool
	calculating    bool
	result         *Result
}

func NewCalculator(engine *Engine, table MultipleTable, saver *Autosaver) *Calculator {
	return &Calculator{
		engine:  engine,
		table:   table,
		saver:   saver,
		step:    Step1BasicInfo,
		fields:  make(map[Field]string),
		touched: make(map[Field]bool),
	}
}

func (c *Calculator) CurrentStep() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Calculator) IsCalculating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calculating
}

func (c *Calculator) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil
	}
	r := *c.result
	return &r
}

func (c *Calculator) Field(name Field) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields[name]
}

// UpdateField sets one field and leaves every other field's value and
// touched state alone. Edits feed the progressive-save controller.
func (c *Calculator) UpdateField(name Field, value string) {
	if !knownFields[name] {
		return
	}
	c.mu.Lock()
	c.fields[name] = value
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.saver != nil {
		c.saver.NotifyEdit(snap)
	}
}

// HandleFieldBlur marks a field touched, which is what makes its inline
// validation message visible.
func (c *Calculator) HandleFieldBlur(name Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched[name] = true
}

// FieldError returns the validation message to show under a field, or ""
// when the field is valid or its message should stay hidden (untouched
// field before a failed advance attempt).
func (c *Calculator) FieldError(name Field) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.touched[name] && !c.showValidation {
		return ""
	}
	return c.validateFieldLocked(name).Message
}

// IsCurrentStepValid reports whether every required field of the current
// step passes validation.
func (c *Calculator) IsCurrentStepValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepValidLocked()
}

func (c *Calculator) stepValidLocked() bool {
	for _, f := range c.requiredLocked() {
		if !c.validateFieldLocked(f).Valid {
			return false
		}
	}
	return true
}

func (c *Calculator) requiredLocked() []Field {
	required := stepRequiredFields[c.step]
	if c.step == Step2Financial && parseBool(c.fields[FieldHasAdjustments]) {
		required = append(append([]Field{}, required...), FieldAdjustmentAmount)
	}
	return required
}

func (c *Calculator) validateFieldLocked(name Field) validation.Result {
	raw := strings.TrimSpace(c.fields[name])
	switch name {
	case FieldContactName:
		return validation.ContactName(raw)
	case FieldCompanyName:
		return validation.CompanyName(raw)
	case FieldCIF:
		return validation.CIF(raw)
	case FieldEmail:
		return validation.Email(raw)
	case FieldPhone:
		return validation.SpanishPhone(raw)
	case FieldIndustry:
		if !KnownSector(raw) {
			return validation.Result{Message: "Selecciona un sector"}
		}
	case FieldEmployeeRange:
		if !KnownEmployeeRange(raw) {
			return validation.Result{Message: "Selecciona el número de empleados"}
		}
	case FieldYearsOfOperation:
		if raw == "" {
			break // optional
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return validation.Result{Message: "Debe ser un número positivo"}
		}
	case FieldRevenue:
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() {
			return validation.Result{Message: "Introduce una facturación válida"}
		}
	case FieldEBITDA:
		if _, err := decimal.NewFromString(raw); err != nil {
			return validation.Result{Message: "Introduce un EBITDA válido"}
		}
	case FieldAdjustmentAmount:
		if _, err := decimal.NewFromString(raw); err != nil {
			return validation.Result{Message: "Introduce un importe válido"}
		}
	case FieldLocation:
		if raw == "" {
			return validation.Result{Message: "La ubicación es obligatoria"}
		}
	case FieldOwnership:
		switch raw {
		case "alta", "media", "baja":
		default:
			return validation.Result{Message: "Selecciona el grado de participación"}
		}
	}
	return validation.Result{Valid: true}
}

// NextStep advances the wizard. It is a no-op when the current step fails
// validation (the failed attempt turns on showValidation so the inline
// messages appear). Leaving Step3 runs the valuation and the one-time
// authoritative save; a save failure still lands on Step4 but is returned
// so the caller can surface it.
func (c *Calculator) NextStep(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.step >= Step4Results {
		c.mu.Unlock()
		return false, nil
	}
	if !c.stepValidLocked() {
		c.showValidation = true
		c.mu.Unlock()
		return false, nil
	}
	if c.step != Step3Characteristics {
		c.step++
		c.showValidation = false
		c.mu.Unlock()
		return true, nil
	}

	in := c.inputLocked()
	c.calculating = true
	c.mu.Unlock()

	result, err := c.engine.Compute(ctx, in, c.table)

	c.mu.Lock()
	c.calculating = false
	if err != nil {
		c.mu.Unlock()
		return false, err
	}
	c.result = &result
	c.step = Step4Results
	c.showValidation = false
	c.mu.Unlock()

	if c.saver != nil {
		if err := c.saver.FinalSave(ctx, in, result); err != nil {
			return true, err
		}
	}
	return true, nil
}

// PrevStep moves back one step without touching field state.
func (c *Calculator) PrevStep() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step <= Step1BasicInfo {
		return false
	}
	c.step--
	return true
}

// Reset clears every field and returns to Step1. The autosave token is
// rotated so a new session never reuses the previous record.
func (c *Calculator) Reset() {
	c.mu.Lock()
	c.step = Step1BasicInfo
	c.fields = make(map[Field]string)
	c.touched = make(map[Field]bool)
	c.showValidation = false
	c.calculating = false
	c.result = nil
	c.mu.Unlock()

	if c.saver != nil {
		c.saver.Reset()
	}
}

func (c *Calculator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Calculator) snapshotLocked() Snapshot {
	snap := make(Snapshot, len(c.fields))
	for k, v := range c.fields {
		snap[k] = v
	}
	return snap
}

// Input assembles the typed engine input from the current raw fields.
// Callers rely on step gating having validated the numeric fields.
func (c *Calculator) Input() Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputLocked()
}

func (c *Calculator) inputLocked() Input {
	in := Input{
		ContactName:            strings.TrimSpace(c.fields[FieldContactName]),
		CompanyName:            strings.TrimSpace(c.fields[FieldCompanyName]),
		CIF:                    strings.ToUpper(strings.TrimSpace(c.fields[FieldCIF])),
		Email:                  strings.TrimSpace(c.fields[FieldEmail]),
		Phone:                  strings.TrimSpace(c.fields[FieldPhone]),
		Industry:               strings.TrimSpace(c.fields[FieldIndustry]),
		EmployeeRange:          strings.TrimSpace(c.fields[FieldEmployeeRange]),
		HasAdjustments:         parseBool(c.fields[FieldHasAdjustments]),
		Location:               strings.TrimSpace(c.fields[FieldLocation]),
		OwnershipParticipation: strings.TrimSpace(c.fields[FieldOwnership]),
		CompetitiveAdvantage:   strings.TrimSpace(c.fields[FieldCompetitiveAdvantage]),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(c.fields[FieldYearsOfOperation])); err == nil {
		in.YearsOfOperation = n
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(c.fields[FieldRevenue])); err == nil {
		in.Revenue = v
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(c.fields[FieldEBITDA])); err == nil {
		in.EBITDA = v
	}
	if in.HasAdjustments {
		if v, err := decimal.NewFromString(strings.TrimSpace(c.fields[FieldAdjustmentAmount])); err == nil {
			in.AdjustmentAmount = v
		}
	}
	return in
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "si", "sí":
		return true
	}
	return false
}
