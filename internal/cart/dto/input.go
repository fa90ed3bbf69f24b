package dto

type AddItemInput struct {
	MerchantID string
	CartID     string
	VariantID  string
	Quantity   int
}

type UpdateQuantityInput struct {
	MerchantID string
	CartID     string
	VariantID  string
	Quantity   int
}
