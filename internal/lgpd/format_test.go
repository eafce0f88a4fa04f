package lgpd

import "testing"

func TestFormatRevealedTaxID(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"12345678000190", "12.345.678/0001-90"},
		{"12.345.678/0001-90", "12.345.678/0001-90"},
		{"52998224725", "529.982.247-25"},
		{"529.982.247-25", "529.982.247-25"},
		{"123", "123"},
	}
	for _, tc := range cases {
		if got := FormatRevealed(KindTaxID, tc.raw); got != tc.want {
			t.Errorf("FormatRevealed(tax_id, %q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestFormatRevealedPostalCode(t *testing.T) {
	if got := FormatRevealed(KindPostalCode, "01310100"); got != "01310-100" {
		t.Errorf("got %q", got)
	}
	if got := FormatRevealed(KindPostalCode, "0131"); got != "0131" {
		t.Errorf("short CEP should pass through, got %q", got)
	}
}

func TestFormatRevealedPhone(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1133334444", "(11) 3333-4444"},
		{"11999887766", "(11) 99988-7766"},
		{"5511999887766", "+55 (11) 99988-7766"},
		{"999", "999"},
	}
	for _, tc := range cases {
		if got := FormatRevealed(KindPhone, tc.raw); got != tc.want {
			t.Errorf("FormatRevealed(phone, %q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestFormatRevealedGenericPassthrough(t *testing.T) {
	if got := FormatRevealed(KindGeneric, "Rua das Flores, 123"); got != "Rua das Flores, 123" {
		t.Errorf("generic kind must not touch the value, got %q", got)
	}
}
