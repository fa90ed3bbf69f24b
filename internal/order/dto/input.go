package dto

type PlaceOrderInput struct {
	MerchantID      string
	CartID          string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	ShippingCity    string
}
