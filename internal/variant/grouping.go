// Package variant derives option selectors from a product's variants and
// resolves which variant an option click should land on.
package variant

import "github.com/cetus-shop/cetus-catalog-service/internal/model"

// GroupOptions builds one OptionGroup per option type seen across variants.
// Groups and their values keep first-seen order. The first variant carrying
// a value becomes its representative. A value is available when any variant
// carrying it has stock, and stays available once set.
func GroupOptions(variants []model.ProductVariant) []model.OptionGroup {
	groups := []model.OptionGroup{}
	groupIdx := map[string]int{}
	valueIdx := map[string]map[string]int{}

	for _, v := range variants {
		inStock := v.Stock > 0
		for _, ov := range v.OptionValues {
			gi, ok := groupIdx[ov.OptionTypeID]
			if !ok {
				gi = len(groups)
				groupIdx[ov.OptionTypeID] = gi
				valueIdx[ov.OptionTypeID] = map[string]int{}
				groups = append(groups, model.OptionGroup{
					OptionTypeID:   ov.OptionTypeID,
					OptionTypeName: ov.OptionTypeName,
					Values:         []model.GroupValue{},
				})
			}

			vi, seen := valueIdx[ov.OptionTypeID][ov.ID]
			if !seen {
				valueIdx[ov.OptionTypeID][ov.ID] = len(groups[gi].Values)
				groups[gi].Values = append(groups[gi].Values, model.GroupValue{
					ID:                      ov.ID,
					Value:                   ov.Value,
					RepresentativeVariantID: v.ID,
					IsAvailable:             inStock,
				})
				continue
			}
			if inStock {
				groups[gi].Values[vi].IsAvailable = true
			}
		}
	}

	return groups
}

// FindValue looks up a grouped value by option value id.
func FindValue(groups []model.OptionGroup, valueID string) (model.OptionGroup, model.GroupValue, bool) {
	for _, g := range groups {
		for _, gv := range g.Values {
			if gv.ID == valueID {
				return g, gv, true
			}
		}
	}
	return model.OptionGroup{}, model.GroupValue{}, false
}
