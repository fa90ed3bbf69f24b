package variant

import (
	"testing"

	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = model.OptionValue{ID: "red", OptionTypeID: "color", OptionTypeName: "Color", Value: "Red"}
	blue  = model.OptionValue{ID: "blue", OptionTypeID: "color", OptionTypeName: "Color", Value: "Blue"}
	small = model.OptionValue{ID: "s", OptionTypeID: "size", OptionTypeName: "Size", Value: "S"}
	large = model.OptionValue{ID: "l", OptionTypeID: "size", OptionTypeName: "Size", Value: "L"}
)

func mkVariant(id string, stock int, values ...model.OptionValue) model.ProductVariant {
	v := model.ProductVariant{ProductID: "p1", Stock: stock, IsEnabled: true, OptionValues: values}
	v.ID = id
	return v
}

func shirt() []model.ProductVariant {
	return []model.ProductVariant{
		mkVariant("red-s", 0, red, small),
		mkVariant("red-l", 4, red, large),
		mkVariant("blue-s", 2, blue, small),
		mkVariant("blue-l", 0, blue, large),
	}
}

func TestGroupOptions_OrderAndRepresentatives(t *testing.T) {
	groups := GroupOptions(shirt())

	require.Len(t, groups, 2)
	assert.Equal(t, "color", groups[0].OptionTypeID)
	assert.Equal(t, "Size", groups[1].OptionTypeName)

	require.Len(t, groups[0].Values, 2)
	assert.Equal(t, "red", groups[0].Values[0].ID)
	assert.Equal(t, "red-s", groups[0].Values[0].RepresentativeVariantID)
	assert.Equal(t, "blue-s", groups[0].Values[1].RepresentativeVariantID)

	require.Len(t, groups[1].Values, 2)
	assert.Equal(t, "s", groups[1].Values[0].ID)
	assert.Equal(t, "red-s", groups[1].Values[0].RepresentativeVariantID)
	assert.Equal(t, "red-l", groups[1].Values[1].RepresentativeVariantID)
}

func TestGroupOptions_AvailabilityNeverRegresses(t *testing.T) {
	variants := []model.ProductVariant{
		mkVariant("a", 3, red),
		mkVariant("b", 0, red),
		mkVariant("c", 0, blue),
		mkVariant("d", 1, blue),
	}

	groups := GroupOptions(variants)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Values[0].IsAvailable, "red stays available after an out of stock variant")
	assert.True(t, groups[0].Values[1].IsAvailable, "blue becomes available once a variant has stock")

	// Reversing the input changes discovery order but not availability.
	reversed := []model.ProductVariant{variants[3], variants[2], variants[1], variants[0]}
	groups = GroupOptions(reversed)
	for _, gv := range groups[0].Values {
		assert.True(t, gv.IsAvailable, gv.ID)
	}
}

func TestGroupOptions_Empty(t *testing.T) {
	assert.Empty(t, GroupOptions(nil))
	assert.NotNil(t, GroupOptions(nil))

	groups := GroupOptions([]model.ProductVariant{mkVariant("only", 5)})
	assert.Empty(t, groups)
}

func TestResolve_FullCombinationMatch(t *testing.T) {
	variants := shirt()
	// On blue-s, click Large: blue-l is out of stock, so no full match.
	// On red-l, click Small: red-s is out of stock too.
	// On blue-s, click Red: red-s out of stock, falls to red-l.
	id, ok := Resolve(variants, SelectionOf(variants, "blue-s"), "red")
	require.True(t, ok)
	assert.Equal(t, "red-l", id)

	variants[0].Stock = 7
	id, ok = Resolve(variants, SelectionOf(variants, "blue-s"), "red")
	require.True(t, ok)
	assert.Equal(t, "red-s", id, "keeps size when the combination is in stock")
}

func TestResolve_RelaxesToAnyInStock(t *testing.T) {
	variants := shirt()
	id, ok := Resolve(variants, SelectionOf(variants, "blue-s"), "l")
	require.True(t, ok)
	assert.Equal(t, "red-l", id)
}

func TestResolve_FallsBackToRepresentative(t *testing.T) {
	variants := []model.ProductVariant{
		mkVariant("red-s", 0, red, small),
		mkVariant("red-l", 0, red, large),
		mkVariant("blue-s", 5, blue, small),
	}
	id, ok := Resolve(variants, SelectionOf(variants, "blue-s"), "red")
	require.True(t, ok)
	assert.Equal(t, "red-s", id)
}

func TestResolve_UnknownTarget(t *testing.T) {
	variants := shirt()
	id, ok := Resolve(variants, SelectionOf(variants, "red-l"), "green")
	assert.False(t, ok)
	assert.Empty(t, id)

	// A current selection that matches nothing still resolves.
	id, ok = Resolve(variants, []model.OptionValue{{ID: "ghost", OptionTypeID: "ghost"}}, "blue")
	require.True(t, ok)
	assert.Equal(t, "blue-s", id)
}

func TestResolve_Deterministic(t *testing.T) {
	variants := shirt()
	current := SelectionOf(variants, "red-l")
	first, _ := Resolve(variants, current, "s")
	for i := 0; i < 10; i++ {
		again, _ := Resolve(variants, current, "s")
		assert.Equal(t, first, again)
	}
}

func TestResolve_AlwaysDefinedForKnownValues(t *testing.T) {
	variants := shirt()
	for _, v := range variants {
		for _, ov := range v.OptionValues {
			for _, from := range variants {
				id, ok := Resolve(variants, from.OptionValues, ov.ID)
				assert.True(t, ok)
				assert.NotEmpty(t, id)
			}
		}
	}
}

func TestFindByCombination(t *testing.T) {
	variants := shirt()
	v, ok := FindByCombination(variants, []string{"l", "blue"})
	require.True(t, ok)
	assert.Equal(t, "blue-l", v.ID)

	_, ok = FindByCombination(variants, []string{"blue"})
	assert.False(t, ok)
}
