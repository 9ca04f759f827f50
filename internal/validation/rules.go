// Package validation holds the field validators used by the valuation
// calculator. Validators are pure: they return a Result value and never
// panic, so a failed field can be reported inline without touching the
// rest of the form.
package validation

import (
	"regexp"
	"strings"
)

type Result struct {
	Valid   bool
	Message string
}

func ok() Result {
	return Result{Valid: true}
}

func fail(message string) Result {
	return Result{Valid: false, Message: message}
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func Email(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return fail("El email es obligatorio")
	}
	if !emailRe.MatchString(s) {
		return fail("Formato de email no válido")
	}
	return ok()
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// SpanishPhone accepts Spanish mobile and landline numbers: 9 digits
// starting with 6, 7, 8 or 9, optionally prefixed with +34 or 0034.
func SpanishPhone(s string) Result {
	s = phoneSeparators.Replace(strings.TrimSpace(s))
	if s == "" {
		return fail("El teléfono es obligatorio")
	}
	if strings.HasPrefix(s, "+34") {
		s = s[3:]
	} else if strings.HasPrefix(s, "0034") {
		s = s[4:]
	}
	if len(s) != 9 {
		return fail("Formato de teléfono no válido")
	}
	if s[0] < '6' || s[0] > '9' {
		return fail("Formato de teléfono no válido")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fail("Formato de teléfono no válido")
		}
	}
	return ok()
}

func ContactName(s string) Result {
	return nonEmptyName(s, "El nombre de contacto es obligatorio")
}

func CompanyName(s string) Result {
	return nonEmptyName(s, "El nombre de la empresa es obligatorio")
}

func nonEmptyName(s, requiredMsg string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return fail(requiredMsg)
	}
	if len([]rune(s)) < 2 {
		return fail("Debe tener al menos 2 caracteres")
	}
	return ok()
}

const (
	cifOrgLetters = "ABCDEFGHJKLMNPQRSUVW"
	// Organizations whose control character must be the computed digit.
	cifDigitControl = "ABEH"
	// Organizations whose control character must be the computed letter.
	cifLetterControl = "KLMNPQRSW"
	cifControlTable  = "JABCDEFGHI"
)

// CIF validates a Spanish company tax ID: organization letter, seven
// digits, and a control character. The control is computed by summing the
// digits at even 0-indexed positions doubled (subtracting 9 when the
// product exceeds 9) plus the digits at odd positions as-is; the control
// digit is (10 - sum mod 10) mod 10 and the control letter indexes
// "JABCDEFGHI" by that digit. Whether digit or letter applies depends on
// the organization type; types outside both groups accept either.
func CIF(s string) Result {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return fail("El CIF es obligatorio")
	}
	if len(s) != 9 {
		return fail("El CIF debe tener 9 caracteres")
	}
	org := s[0]
	if !strings.ContainsRune(cifOrgLetters, rune(org)) {
		return fail("Letra de organización no válida")
	}

	sum := 0
	for i := 0; i < 7; i++ {
		ch := s[i+1]
		if ch < '0' || ch > '9' {
			return fail("El CIF debe contener 7 dígitos")
		}
		d := int(ch - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	controlDigit := (10 - sum%10) % 10
	controlLetter := cifControlTable[controlDigit]

	last := s[8]
	digitOK := last == byte('0'+controlDigit)
	letterOK := last == controlLetter

	switch {
	case strings.ContainsRune(cifDigitControl, rune(org)):
		if !digitOK {
			return fail("Dígito de control no válido")
		}
	case strings.ContainsRune(cifLetterControl, rune(org)):
		if !letterOK {
			return fail("Letra de control no válida")
		}
	default:
		if !digitOK && !letterOK {
			return fail("Carácter de control no válido")
		}
	}
	return ok()
}
