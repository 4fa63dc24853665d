package kitchen

import (
	"context"
	"fmt"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/gorm"
)

// Lookup is the part of the directory the router depends on.
type Lookup interface {
	ActiveKitchens(ctx context.Context, tx *gorm.DB, kind types.KitchenType) ([]models.Restaurant, error)
	BoundKitchenIDs(ctx context.Context, tx *gorm.DB, restaurantID uint, kind types.KitchenType) ([]uint, error)
}

// Line is one cart entry tagged with the kitchen type declared by its menu
// category.
type Line struct {
	MenuItemID          uint
	Quantity            int
	SpecialInstructions string
	KitchenType         string
}

// Group is the set of lines one kitchen must prepare.
type Group struct {
	Kitchen     models.Restaurant
	KitchenType types.KitchenType
	Lines       []Line
}

type Router struct {
	lookup Lookup
}

func NewRouter(lookup Lookup) *Router {
	return &Router{lookup: lookup}
}

// Route partitions lines by destination kitchen. Groups come back in order of
// first appearance in the cart. Nothing is persisted.
func (r *Router) Route(ctx context.Context, tx *gorm.DB, restaurantID uint, lines []Line) ([]Group, error) {
	if len(lines) == 0 {
		return nil, apperrors.Validation(apperrors.CodeEmptySubmission, "At least one item is required")
	}

	resolved := make(map[types.KitchenType]models.Restaurant)
	index := make(map[uint]int)
	var groups []Group

	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperrors.Validation("", "Item %d: quantity must be positive", i+1)
		}

		kind, err := types.ParseKitchenType(line.KitchenType)
		if err != nil {
			return nil, apperrors.Validation(apperrors.CodeInvalidKitchenType,
				"Menu item %d has unknown kitchen type %q", line.MenuItemID, line.KitchenType)
		}

		kitchen, ok := resolved[kind]
		if !ok {
			kitchen, err = r.resolve(ctx, tx, restaurantID, kind)
			if err != nil {
				return nil, err
			}
			resolved[kind] = kitchen
		}

		pos, ok := index[kitchen.ID]
		if !ok {
			pos = len(groups)
			index[kitchen.ID] = pos
			groups = append(groups, Group{Kitchen: kitchen, KitchenType: kind})
		}
		groups[pos].Lines = append(groups[pos].Lines, line)
	}

	return groups, nil
}

// resolve picks the single kitchen for a type: the ordering restaurant
// itself, else its one explicit binding, else the only active kitchen.
func (r *Router) resolve(ctx context.Context, tx *gorm.DB, restaurantID uint, kind types.KitchenType) (models.Restaurant, error) {
	candidates, err := r.lookup.ActiveKitchens(ctx, tx, kind)
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("list %s kitchens: %w", kind, err)
	}
	if len(candidates) == 0 {
		return models.Restaurant{}, apperrors.NotFound(apperrors.CodeKitchenNotFound, "No active %s kitchen", kind)
	}

	for _, c := range candidates {
		if c.ID == restaurantID {
			return c, nil
		}
	}

	bound, err := r.lookup.BoundKitchenIDs(ctx, tx, restaurantID, kind)
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("list %s bindings: %w", kind, err)
	}

	boundSet := make(map[uint]struct{}, len(bound))
	for _, id := range bound {
		boundSet[id] = struct{}{}
	}

	var matches []models.Restaurant
	for _, c := range candidates {
		if _, ok := boundSet[c.ID]; ok {
			matches = append(matches, c)
		}
	}

	switch {
	case len(matches) == 1:
		return matches[0], nil
	case len(matches) > 1:
		return models.Restaurant{}, apperrors.Conflict(apperrors.CodeKitchenAmbiguous,
			"Restaurant %d is bound to %d active %s kitchens", restaurantID, len(matches), kind)
	case len(candidates) == 1:
		return candidates[0], nil
	}

	return models.Restaurant{}, apperrors.Conflict(apperrors.CodeKitchenAmbiguous,
		"%d active %s kitchens and none bound to restaurant %d", len(candidates), kind, restaurantID)
}
