package kitchen

import (
	"context"
	"errors"
	"fmt"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"gorm.io/gorm"
)

// Directory answers kitchen and staffing questions. Every method takes the
// handle to query so callers can pass an open transaction.
type Directory struct{}

func NewDirectory() *Directory {
	return &Directory{}
}

// ActiveKitchens lists active restaurants with a kitchen of the given type.
func (d *Directory) ActiveKitchens(ctx context.Context, tx *gorm.DB, kind types.KitchenType) ([]models.Restaurant, error) {
	var kitchens []models.Restaurant
	err := tx.WithContext(ctx).
		Where("restaurant_type = ? AND has_kitchen = ? AND is_active = ?", kind, true, true).
		Order("id").
		Find(&kitchens).Error
	return kitchens, err
}

// BoundKitchenIDs returns kitchens of the given type explicitly bound to the
// restaurant.
func (d *Directory) BoundKitchenIDs(ctx context.Context, tx *gorm.DB, restaurantID uint, kind types.KitchenType) ([]uint, error) {
	var ids []uint
	err := tx.WithContext(ctx).
		Model(&models.RestaurantKitchen{}).
		Where("restaurant_id = ? AND kitchen_type = ?", restaurantID, kind).
		Order("kitchen_id").
		Pluck("kitchen_id", &ids).Error
	return ids, err
}

func (d *Directory) Kitchen(ctx context.Context, tx *gorm.DB, kitchenID uint) (models.Restaurant, error) {
	var k models.Restaurant
	err := tx.WithContext(ctx).
		Where("id = ? AND has_kitchen = ?", kitchenID, true).
		First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return k, apperrors.NotFound(apperrors.CodeKitchenNotFound, "Kitchen %d not found", kitchenID)
	}
	return k, err
}

// Staff returns active users assigned to the kitchen in the given role.
func (d *Directory) Staff(ctx context.Context, tx *gorm.DB, kitchenID uint, role types.Role) ([]models.User, error) {
	var users []models.User
	err := tx.WithContext(ctx).
		Joins("JOIN kitchen_staff ON kitchen_staff.user_id = users.id").
		Where("kitchen_staff.kitchen_id = ? AND kitchen_staff.role = ? AND users.is_active = ?", kitchenID, role, true).
		Order("users.id").
		Find(&users).Error
	return users, err
}

// IsStaff reports whether the user is assigned to the kitchen in any role.
func (d *Directory) IsStaff(ctx context.Context, tx *gorm.DB, kitchenID, userID uint) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.KitchenStaff{}).
		Where("kitchen_id = ? AND user_id = ?", kitchenID, userID).
		Count(&count).Error
	return count > 0, err
}

// BindKitchen records an explicit restaurant → kitchen binding. The unique
// index settles concurrent attempts; the loser gets DUPLICATE_KITCHEN_BINDING.
func (d *Directory) BindKitchen(ctx context.Context, tx *gorm.DB, restaurantID, kitchenID uint) (models.RestaurantKitchen, error) {
	var binding models.RestaurantKitchen

	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, restaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(apperrors.CodeNotFound, "Restaurant %d not found", restaurantID)
			}
			return err
		}

		k, err := d.Kitchen(ctx, tx, kitchenID)
		if err != nil {
			return err
		}
		if !k.IsActive {
			return apperrors.Validation("", "Kitchen %d is not active", kitchenID)
		}

		binding = models.RestaurantKitchen{
			RestaurantID: restaurantID,
			KitchenID:    kitchenID,
			KitchenType:  k.RestaurantType,
		}
		if err := tx.Create(&binding).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict(apperrors.CodeDuplicateKitchenBind,
					"Kitchen %d is already bound to restaurant %d", kitchenID, restaurantID)
			}
			return fmt.Errorf("create binding: %w", err)
		}
		return nil
	})

	return binding, err
}
