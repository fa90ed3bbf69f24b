package variant

import "github.com/cetus-shop/cetus-catalog-service/internal/model"

// Resolve picks the variant to show when the shopper, currently on a
// variant carrying the values in current, clicks targetValueID.
//
// Order of preference: a variant with the target plus every current value
// of the other option types and stock; any variant with the target and
// stock; the target's representative variant even when out of stock.
// It returns false only when no variant carries the target.
func Resolve(variants []model.ProductVariant, current []model.OptionValue, targetValueID string) (string, bool) {
	groups := GroupOptions(variants)
	group, target, ok := FindValue(groups, targetValueID)
	if !ok {
		return "", false
	}

	others := make([]string, 0, len(current))
	for _, ov := range current {
		if ov.OptionTypeID != group.OptionTypeID {
			others = append(others, ov.ID)
		}
	}

	for i := range variants {
		v := &variants[i]
		if v.Stock > 0 && v.HasOptionValue(targetValueID) && hasAll(v, others) {
			return v.ID, true
		}
	}

	for i := range variants {
		v := &variants[i]
		if v.Stock > 0 && v.HasOptionValue(targetValueID) {
			return v.ID, true
		}
	}

	return target.RepresentativeVariantID, true
}

// SelectionOf returns the option values of the variant with id, or nil
// when no such variant exists.
func SelectionOf(variants []model.ProductVariant, id string) []model.OptionValue {
	for _, v := range variants {
		if v.ID == id {
			return v.OptionValues
		}
	}
	return nil
}

// FindByCombination returns the variant whose option value set equals ids.
func FindByCombination(variants []model.ProductVariant, ids []string) (*model.ProductVariant, bool) {
	for i := range variants {
		v := &variants[i]
		if len(v.OptionValues) == len(ids) && hasAll(v, ids) {
			return v, true
		}
	}
	return nil, false
}

func hasAll(v *model.ProductVariant, ids []string) bool {
	for _, id := range ids {
		if !v.HasOptionValue(id) {
			return false
		}
	}
	return true
}
