package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	ListAllergenIDs(ctx context.Context, db *gorm.DB) ([]string, error)
	ListSupplementIDs(ctx context.Context, db *gorm.DB) ([]string, error)

	// FindOrCreateMeal reports created=false when the natural key already existed.
	FindOrCreateMeal(ctx context.Context, db *gorm.DB, meal ProcessedMeal, now time.Time) (id int64, created bool, err error)
	FindCategoryID(ctx context.Context, db *gorm.DB, name string) (*int64, error)
	UpsertPlanMeal(ctx context.Context, db *gorm.DB, entry PlanMeal) error
	UpsertPlanMetadata(ctx context.Context, db *gorm.DB, meta PlanMetadata) error

	GetFingerprint(ctx context.Context, db *gorm.DB, start, end datatypes.Date) (hash string, found bool, err error)
	SaveFingerprint(ctx context.Context, db *gorm.DB, start, end datatypes.Date, hash string) error
}
