package domain

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	// ListAllergens returns all allergens, or the one matching id when id is set.
	ListAllergens(ctx context.Context, db *gorm.DB, id string) ([]Code, error)
	ListSupplements(ctx context.Context, db *gorm.DB, id string) ([]Code, error)
	ListCategories(ctx context.Context, db *gorm.DB) ([]Category, error)
	// ListMealIDs returns up to limit meal ids greater than afterID, ascending.
	ListMealIDs(ctx context.Context, db *gorm.DB, afterID int64, limit int) ([]int64, error)
	ListMealRows(ctx context.Context, db *gorm.DB, ids []int64) ([]MealRow, error)
	// ListPlanRows returns entries with from <= date and, when to is set, date <= to.
	ListPlanRows(ctx context.Context, db *gorm.DB, from datatypes.Date, to *datatypes.Date) ([]PlanRow, error)
	ListDays(ctx context.Context, db *gorm.DB, from *datatypes.Date) ([]DayRow, error)
	FindDay(ctx context.Context, db *gorm.DB, date datatypes.Date) (*DayRow, error)
}
