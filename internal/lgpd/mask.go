package lgpd

// FieldKind selects the masked placeholder shape and the reveal formatting
// of one sensitive field.
type FieldKind string

const (
	KindTaxID                 FieldKind = "tax_id"
	KindStateRegistration     FieldKind = "state_registration"
	KindMunicipalRegistration FieldKind = "municipal_registration"
	KindPhone                 FieldKind = "phone"
	KindPostalCode            FieldKind = "postal_code"
	KindGeneric               FieldKind = "generic"
)

// Placeholder returns the bullet pattern shown while a field is masked. The
// shape mirrors the expected value format without exposing any data.
func Placeholder(kind FieldKind) string {
	switch kind {
	case KindTaxID:
		return "••.•••.•••/••••-••"
	case KindStateRegistration:
		return "•••.•••.•••.•••"
	case KindMunicipalRegistration:
		return "•.•••.•••-•"
	case KindPhone:
		return "(••) •••••-••••"
	case KindPostalCode:
		return "•••••-•••"
	}
	return "••••••••••"
}

// KindFor maps a platform field name to its FieldKind. Unknown fields fall
// back to the generic placeholder.
func KindFor(field string) FieldKind {
	switch field {
	case "cnpj", "cpf", "tax_id":
		return KindTaxID
	case "state_registration", "inscricao_estadual":
		return KindStateRegistration
	case "municipal_registration", "inscricao_municipal":
		return KindMunicipalRegistration
	case "phone", "telefone", "cellphone", "celular":
		return KindPhone
	case "zip_code", "postal_code", "cep":
		return KindPostalCode
	}
	return KindGeneric
}
