package shared

// Master data permissions: clients, guarantors, products, personnel.
const (
	PermClientView   = "masterdata.client.view"
	PermClientCreate = "masterdata.client.create"
	PermClientEdit   = "masterdata.client.edit"

	PermGuarantorView   = "masterdata.guarantor.view"
	PermGuarantorCreate = "masterdata.guarantor.create"
	PermGuarantorEdit   = "masterdata.guarantor.edit"

	PermProductView   = "masterdata.product.view"
	PermProductCreate = "masterdata.product.create"
	PermProductEdit   = "masterdata.product.edit"

	PermPersonnelView   = "masterdata.personnel.view"
	PermPersonnelCreate = "masterdata.personnel.create"
	PermPersonnelEdit   = "masterdata.personnel.edit"
)

// MasterDataScopes lists all permissions related to master data screens.
func MasterDataScopes() []string {
	return []string{
		PermClientView, PermClientCreate, PermClientEdit,
		PermGuarantorView, PermGuarantorCreate, PermGuarantorEdit,
		PermProductView, PermProductCreate, PermProductEdit,
		PermPersonnelView, PermPersonnelCreate, PermPersonnelEdit,
	}
}
