package shared

// Collections permissions declared for RBAC.
const (
	PermCollectionsView    = "collections.view"
	PermCollectionsCollect = "collections.collect"
	PermCollectionsLateFee = "collections.latefee"
)

// CollectionsScopes lists all permissions related to payment collection.
func CollectionsScopes() []string {
	return []string{
		PermCollectionsView,
		PermCollectionsCollect,
		PermCollectionsLateFee,
	}
}
