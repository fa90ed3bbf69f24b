package dto

type ProductFilters struct {
	MerchantID  string
	CategoryID  string
	IsActive    *bool
	SearchQuery string // For name, slug, sku search
	SortBy      string // name, created_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}
