package validation

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"ana@x.com", true},
		{"ana.garcia@empresa.es", true},
		{"  ana@x.com  ", true},
		{"", false},
		{"ana", false},
		{"ana@x", false},
		{"ana @x.com", false},
		{"@x.com", false},
	}
	for _, tt := range tests {
		if got := Email(tt.in); got.Valid != tt.valid {
			t.Fatalf("Email(%q).Valid = %v, want %v (%s)", tt.in, got.Valid, tt.valid, got.Message)
		}
	}
}

func TestSpanishPhone(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"+34612345678", true},
		{"0034612345678", true},
		{"612345678", true},
		{"612 345 678", true},
		{"91-234-56-78", true},
		{"812345678", true},
		{"512345678", false}, // leading 5 is not a Spanish number
		{"61234567", false},  // too short
		{"6123456789", false},
		{"+3361234567", false},
		{"", false},
		{"61234567a", false},
	}
	for _, tt := range tests {
		if got := SpanishPhone(tt.in); got.Valid != tt.valid {
			t.Fatalf("SpanishPhone(%q).Valid = %v, want %v (%s)", tt.in, got.Valid, tt.valid, got.Message)
		}
	}
}

func TestNames(t *testing.T) {
	if got := ContactName(""); got.Valid {
		t.Fatalf("empty contact name accepted")
	}
	if got := ContactName("A"); got.Valid {
		t.Fatalf("single-char contact name accepted")
	}
	if got := ContactName("Ana"); !got.Valid {
		t.Fatalf("valid contact name rejected: %s", got.Message)
	}
	if got := CompanyName("  "); got.Valid {
		t.Fatalf("blank company name accepted")
	}
	if got := CompanyName("Acme"); !got.Valid {
		t.Fatalf("valid company name rejected: %s", got.Message)
	}
}

// cifControl recomputes the expected control characters independently of
// the validator so the two implementations cross-check each other.
func cifControl(digits string) (byte, byte) {
	sum := 0
	for i := 0; i < 7; i++ {
		d := int(digits[i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	n := (10 - sum%10) % 10
	return byte('0' + n), "JABCDEFGHI"[n]
}

func TestCIFKnownValues(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"B12345674", true},  // worked example
		{"B12345670", false}, // wrong control digit
		{"b12345674", true},  // case-insensitive
		{"A28015865", true},  // real-world number-control CIF
		{"Q2826000H", true},  // real-world letter-control CIF
		{"Q28260008", false}, // Q requires the letter form
		{"B1234567D", false}, // B requires the digit form
		{"K1234567D", true},  // K takes the letter form
		{"K12345674", false},
		{"C12345674", true}, // C accepts either
		{"C1234567D", true},
		{"C1234567E", false},
		{"B00000000", true},
		{"", false},
		{"B1234567", false},   // too short
		{"B123456741", false}, // too long
		{"112345674", false},  // missing org letter
		{"I12345674", false},  // I is not an org letter
		{"B12E45674", false},  // non-digit in body
	}
	for _, tt := range tests {
		if got := CIF(tt.in); got.Valid != tt.valid {
			t.Fatalf("CIF(%q).Valid = %v, want %v (%s)", tt.in, got.Valid, tt.valid, got.Message)
		}
	}
}

// For well-formed inputs the validator must accept exactly the control
// characters the documented algorithm produces and reject all others.
func TestCIFControlExhaustive(t *testing.T) {
	bodies := []string{"1234567", "0000000", "9999999", "5810501", "2826000", "0073651"}
	for _, body := range bodies {
		digit, letter := cifControl(body)
		for _, org := range "ABEH" {
			for ctl := byte('0'); ctl <= '9'; ctl++ {
				cif := string(org) + body + string(ctl)
				want := ctl == digit
				if got := CIF(cif); got.Valid != want {
					t.Fatalf("CIF(%q).Valid = %v, want %v", cif, got.Valid, want)
				}
			}
		}
		for _, org := range "KLMNPQRSW" {
			for ctl := byte('A'); ctl <= 'J'; ctl++ {
				cif := string(org) + body + string(ctl)
				want := ctl == letter
				if got := CIF(cif); got.Valid != want {
					t.Fatalf("CIF(%q).Valid = %v, want %v", cif, got.Valid, want)
				}
			}
		}
		// Mixed-control organizations accept both forms.
		for _, org := range "CDFGJUV" {
			if got := CIF(string(org) + body + string(digit)); !got.Valid {
				t.Fatalf("CIF %s%s%c rejected digit control", string(org), body, digit)
			}
			if got := CIF(string(org) + body + string(letter)); !got.Valid {
				t.Fatalf("CIF %s%s%c rejected letter control", string(org), body, letter)
			}
		}
	}
}
