package dto

type MovementFilters struct {
	MerchantID   string
	ProductID    string
	VariantID    string
	MovementType string
	Page         int
	PageSize     int
}
