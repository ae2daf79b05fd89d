package product

// Filterable attribute names shared by search filters and the store index.
const (
	FieldStatus      = "status"
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldTags        = "tags"
	FieldDietary     = "dietary"
	FieldArtisan     = "artisan"
	FieldPrice       = "price"
	FieldStock       = "stock"
	FieldCreated     = "created"
)
