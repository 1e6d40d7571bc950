package pgc

// Class is one of the eight top-level PGC groupings.
type Class struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Classes is the immutable class reference shared by every tenant.
var Classes = []Class{
	{Code: "1", Name: "Disponibilidades"},
	{Code: "2", Name: "Existências"},
	{Code: "3", Name: "Terceiros"},
	{Code: "4", Name: "Imobilizações"},
	{Code: "5", Name: "Capital, Reservas e Resultados Transitados"},
	{Code: "6", Name: "Custos e Perdas"},
	{Code: "7", Name: "Proveitos e Ganhos"},
	{Code: "8", Name: "Resultados"},
}

// LookupClass finds the class identified by the first character of code.
func LookupClass(code string) (Class, bool) {
	digit := ClassDigit(code)
	for _, c := range Classes {
		if c.Code == digit {
			return c, true
		}
	}
	return Class{}, false
}
