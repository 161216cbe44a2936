package core

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain integer", "10", "10", true},
		{"plain decimal", "99.90", "99.90", true},
		{"thousands and decimal", "1,234.56", "1234.56", true},
		{"comma decimal", "1234,56", "1234.56", true},
		{"comma only is a decimal point", "1,234", "1.234", true},
		{"currency symbol", "$ 99.90", "99.90", true},
		{"euro with comma decimal", "€12,50", "12.50", true},
		{"space grouped", "1 234,50", "1234.50", true},
		{"currency code", "USD 1,000.00", "1000.00", true},
		{"negative", "-5", "-5", true},
		{"zero", "0", "0", true},
		{"several commas", "1,234,567", "", false},
		{"several dots", "1.2.3", "", false},
		{"trailing minus", "5-", "", false},
		{"letters only", "abc", "", false},
		{"blank", "   ", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseAmount(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !ok {
				if d != nil {
					t.Errorf("ParseAmount(%q) returned %v on failure", tt.input, d)
				}
				return
			}
			if got := FormatAmount(d); got != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAmount_Sign(t *testing.T) {
	for input, want := range map[string]int{"12.5": 1, "0": 0, "-0.01": -1} {
		d, ok := ParseAmount(input)
		if !ok {
			t.Fatalf("ParseAmount(%q) failed", input)
		}
		if d.Sign() != want {
			t.Errorf("ParseAmount(%q).Sign() = %d, want %d", input, d.Sign(), want)
		}
	}
}

func TestFormatAmount_Nil(t *testing.T) {
	if got := FormatAmount(nil); got != "" {
		t.Errorf("FormatAmount(nil) = %q, want empty", got)
	}
}
