package model

type OptionType struct {
	ID        string        `db:"id" json:"id"`
	ProductID string        `db:"product_id" json:"product_id"`
	Name      string        `db:"name" json:"name"`
	Position  int           `db:"position" json:"position"`
	Values    []OptionValue `db:"-" json:"values"`
}

// OptionValue carries its type's id and name so it can be displayed
// without joining back to OptionType.
type OptionValue struct {
	ID             string `db:"id" json:"id"`
	OptionTypeID   string `db:"option_type_id" json:"option_type_id"`
	OptionTypeName string `db:"option_type_name" json:"option_type_name"`
	Value          string `db:"value" json:"value"`
	Position       int    `db:"position" json:"position"`
}

// OptionGroup is derived from a product's variants and never persisted.
type OptionGroup struct {
	OptionTypeID   string       `json:"option_type_id"`
	OptionTypeName string       `json:"option_type_name"`
	Values         []GroupValue `json:"values"`
}

type GroupValue struct {
	ID                      string `json:"id"`
	Value                   string `json:"value"`
	RepresentativeVariantID string `json:"representative_variant_id"`
	IsAvailable             bool   `json:"is_available"`
}
