package shared

// Sales permissions declared for RBAC.
const (
	PermSaleView     = "sales.sale.view"
	PermSaleCreate   = "sales.sale.create"
	PermSaleFinalize = "sales.sale.finalize"
	PermSaleAnnul    = "sales.sale.annul"
	PermSaleRate     = "sales.sale.rate"

	PermRatesView = "sales.rates.view"
	PermRatesEdit = "sales.rates.edit"

	PermDocumentsPrint = "sales.documents.print"
)

// SalesScopes lists all permissions related to the sales module.
func SalesScopes() []string {
	return []string{
		PermSaleView,
		PermSaleCreate,
		PermSaleFinalize,
		PermSaleAnnul,
		PermSaleRate,
		PermRatesView,
		PermRatesEdit,
		PermDocumentsPrint,
	}
}
