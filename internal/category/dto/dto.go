package dto

type CategoryFilters struct {
	MerchantID string
	ParentID   *string // Nil means ignore, empty string means root categories
	IsActive   *bool
	// AsTree nests children under their parents; pagination is ignored.
	AsTree   bool
	Page     int
	PageSize int
}
