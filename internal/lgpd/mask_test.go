package lgpd

import (
	"strings"
	"testing"
)

func TestPlaceholderShapes(t *testing.T) {
	cases := []struct {
		kind FieldKind
		want string
	}{
		{KindTaxID, "••.•••.•••/••••-••"},
		{KindStateRegistration, "•••.•••.•••.•••"},
		{KindMunicipalRegistration, "•.•••.•••-•"},
		{KindPhone, "(••) •••••-••••"},
		{KindPostalCode, "•••••-•••"},
		{KindGeneric, "••••••••••"},
	}
	for _, tc := range cases {
		got := Placeholder(tc.kind)
		if got != tc.want {
			t.Errorf("Placeholder(%s) = %q, want %q", tc.kind, got, tc.want)
		}
		if strings.ContainsAny(got, "0123456789") {
			t.Errorf("placeholder for %s leaks digits: %q", tc.kind, got)
		}
	}
}

func TestKindFor(t *testing.T) {
	cases := map[string]FieldKind{
		"cnpj":                   KindTaxID,
		"cpf":                    KindTaxID,
		"state_registration":     KindStateRegistration,
		"inscricao_estadual":     KindStateRegistration,
		"municipal_registration": KindMunicipalRegistration,
		"phone":                  KindPhone,
		"celular":                KindPhone,
		"zip_code":               KindPostalCode,
		"cep":                    KindPostalCode,
		"something_else":         KindGeneric,
	}
	for field, want := range cases {
		if got := KindFor(field); got != want {
			t.Errorf("KindFor(%q) = %s, want %s", field, got, want)
		}
	}
}
