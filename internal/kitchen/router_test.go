package kitchen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/testutil"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/gorm"
)

type fakeLookup struct {
	kitchens map[types.KitchenType][]models.Restaurant
	bindings map[uint][]uint
	err      error
}

func (f *fakeLookup) ActiveKitchens(_ context.Context, _ *gorm.DB, kind types.KitchenType) ([]models.Restaurant, error) {
	return f.kitchens[kind], f.err
}

func (f *fakeLookup) BoundKitchenIDs(_ context.Context, _ *gorm.DB, restaurantID uint, _ types.KitchenType) ([]uint, error) {
	return f.bindings[restaurantID], nil
}

func kitchenRow(id uint, kind types.KitchenType) models.Restaurant {
	return models.Restaurant{BaseModel: models.BaseModel{ID: id}, RestaurantType: kind, HasKitchen: true, IsActive: true}
}

func TestRoutePartitionsByKitchen(t *testing.T) {
	lookup := &fakeLookup{kitchens: map[types.KitchenType][]models.Restaurant{
		types.KitchenRestaurant: {kitchenRow(1, types.KitchenRestaurant)},
		types.KitchenBar:        {kitchenRow(2, types.KitchenBar)},
	}}
	router := NewRouter(lookup)

	groups, err := router.Route(context.Background(), nil, 1, []Line{
		{MenuItemID: 10, Quantity: 1, KitchenType: "restaurant"},
		{MenuItemID: 30, Quantity: 2, KitchenType: "bar"},
		{MenuItemID: 11, Quantity: 1, KitchenType: "Restaurant"},
	})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, uint(1), groups[0].Kitchen.ID)
	assert.Equal(t, types.KitchenRestaurant, groups[0].KitchenType)
	assert.Len(t, groups[0].Lines, 2)

	assert.Equal(t, uint(2), groups[1].Kitchen.ID)
	assert.Len(t, groups[1].Lines, 1)
}

func TestRouteErrors(t *testing.T) {
	lookup := &fakeLookup{kitchens: map[types.KitchenType][]models.Restaurant{
		types.KitchenRestaurant: {kitchenRow(1, types.KitchenRestaurant)},
	}}
	router := NewRouter(lookup)
	ctx := context.Background()

	_, err := router.Route(ctx, nil, 1, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEmptySubmission))

	_, err = router.Route(ctx, nil, 1, []Line{{MenuItemID: 1, Quantity: 1, KitchenType: "pastry"}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidKitchenType))

	_, err = router.Route(ctx, nil, 1, []Line{{MenuItemID: 1, Quantity: 1, KitchenType: "bar"}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeKitchenNotFound))

	_, err = router.Route(ctx, nil, 1, []Line{{MenuItemID: 1, Quantity: 0, KitchenType: "restaurant"}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	lookup.err = errors.New("db down")
	_, err = router.Route(ctx, nil, 1, []Line{{MenuItemID: 1, Quantity: 1, KitchenType: "restaurant"}})
	require.Error(t, err)
	_, isApp := apperrors.As(err)
	assert.False(t, isApp)
}

func TestRouteTieBreak(t *testing.T) {
	bars := []models.Restaurant{kitchenRow(20, types.KitchenBar), kitchenRow(21, types.KitchenBar)}
	ctx := context.Background()
	line := []Line{{MenuItemID: 1, Quantity: 1, KitchenType: "bar"}}

	t.Run("ambiguous without binding", func(t *testing.T) {
		router := NewRouter(&fakeLookup{kitchens: map[types.KitchenType][]models.Restaurant{types.KitchenBar: bars}})
		_, err := router.Route(ctx, nil, 1, line)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeKitchenAmbiguous))
	})

	t.Run("explicit binding wins", func(t *testing.T) {
		router := NewRouter(&fakeLookup{
			kitchens: map[types.KitchenType][]models.Restaurant{types.KitchenBar: bars},
			bindings: map[uint][]uint{1: {21}},
		})
		groups, err := router.Route(ctx, nil, 1, line)
		require.NoError(t, err)
		assert.Equal(t, uint(21), groups[0].Kitchen.ID)
	})

	t.Run("binding to inactive kitchen is ignored", func(t *testing.T) {
		router := NewRouter(&fakeLookup{
			kitchens: map[types.KitchenType][]models.Restaurant{types.KitchenBar: bars[:1]},
			bindings: map[uint][]uint{1: {99}},
		})
		groups, err := router.Route(ctx, nil, 1, line)
		require.NoError(t, err)
		assert.Equal(t, uint(20), groups[0].Kitchen.ID)
	})

	t.Run("ordering restaurant is its own kitchen", func(t *testing.T) {
		router := NewRouter(&fakeLookup{kitchens: map[types.KitchenType][]models.Restaurant{types.KitchenBar: bars}})
		groups, err := router.Route(ctx, nil, 20, line)
		require.NoError(t, err)
		assert.Equal(t, uint(20), groups[0].Kitchen.ID)
	})

	t.Run("two bindings are ambiguous", func(t *testing.T) {
		router := NewRouter(&fakeLookup{
			kitchens: map[types.KitchenType][]models.Restaurant{types.KitchenBar: bars},
			bindings: map[uint][]uint{1: {20, 21}},
		})
		_, err := router.Route(ctx, nil, 1, line)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeKitchenAmbiguous))
	})
}

func TestDirectoryAgainstDatabase(t *testing.T) {
	w := testutil.NewWorld(t)
	dir := NewDirectory()
	ctx := context.Background()

	bars, err := dir.ActiveKitchens(ctx, w.DB, types.KitchenBar)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, w.Bar.ID, bars[0].ID)

	chefs, err := dir.Staff(ctx, w.DB, w.Kitchen.ID, types.RoleChef)
	require.NoError(t, err)
	require.Len(t, chefs, 1)
	assert.Equal(t, w.Chef.ID, chefs[0].ID)

	ok, err := dir.IsStaff(ctx, w.DB, w.Bar.ID, w.Chef.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	second := testutil.CreateKitchen(t, w.DB, "Pool Bar", types.KitchenBar)
	_, err = NewRouter(dir).Route(ctx, w.DB, w.Kitchen.ID, []Line{{MenuItemID: w.Beer.ID, Quantity: 1, KitchenType: "bar"}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeKitchenAmbiguous))

	binding, err := dir.BindKitchen(ctx, w.DB, w.Kitchen.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, types.KitchenBar, binding.KitchenType)

	_, err = dir.BindKitchen(ctx, w.DB, w.Kitchen.ID, second.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateKitchenBind))

	groups, err := NewRouter(dir).Route(ctx, w.DB, w.Kitchen.ID, []Line{{MenuItemID: w.Beer.ID, Quantity: 1, KitchenType: "bar"}})
	require.NoError(t, err)
	assert.Equal(t, second.ID, groups[0].Kitchen.ID)

	_, err = dir.Kitchen(ctx, w.DB, 9999)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeKitchenNotFound))
}
