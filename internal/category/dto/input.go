package dto

type CreateCategoryInput struct {
	MerchantID  string
	ParentID    *string
	Slug        string
	Name        string
	Description string
	ImageURL    string
	SortOrder   int
}

type UpdateCategoryInput struct {
	ID          string
	MerchantID  string
	ParentID    *string // nil moves the category to the root
	Slug        string
	Name        string
	Description string
	ImageURL    string
	SortOrder   int
	IsActive    bool
}
