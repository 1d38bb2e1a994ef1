package models

// The fixed category set for Brazilian personal finances. The classification
// service must answer with labels from this set; anything else is coerced to
// CategoryOther.
const (
	CategorySupermarket   = "Supermercado"
	CategoryRestaurants   = "Restaurantes"
	CategoryTransport     = "Transporte"
	CategorySubscriptions = "Assinaturas"
	CategoryUtilities     = "Utilidades"
	CategoryHealth        = "Saúde"
	CategoryEntertainment = "Entretenimento"
	CategoryShopping      = "Compras"
	CategoryEducation     = "Educação"
	CategoryHousing       = "Moradia"
	CategoryInsurance     = "Seguros"
	CategoryInvestments   = "Investimentos"
	CategoryTaxes         = "Impostos"
	CategoryTransfers     = "Transferências"
	CategoryOther         = "Outros"
)

// AllCategories lists every valid category label.
var AllCategories = []string{
	CategorySupermarket,
	CategoryRestaurants,
	CategoryTransport,
	CategorySubscriptions,
	CategoryUtilities,
	CategoryHealth,
	CategoryEntertainment,
	CategoryShopping,
	CategoryEducation,
	CategoryHousing,
	CategoryInsurance,
	CategoryInvestments,
	CategoryTaxes,
	CategoryTransfers,
	CategoryOther,
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllCategories))
	for _, c := range AllCategories {
		m[c] = struct{}{}
	}
	return m
}()

// IsValidCategory reports whether label belongs to the fixed category set.
func IsValidCategory(label string) bool {
	_, ok := categorySet[label]
	return ok
}

// CoerceCategory returns label if it is valid, CategoryOther otherwise.
func CoerceCategory(label string) string {
	if IsValidCategory(label) {
		return label
	}
	return CategoryOther
}
