package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

func (r *repo) ListAllergenIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	if err := db.WithContext(ctx).Model(&domain.Allergen{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, storageErr("list allergens", err)
	}
	return ids, nil
}

func (r *repo) ListSupplementIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	if err := db.WithContext(ctx).Model(&domain.Supplement{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, storageErr("list supplements", err)
	}
	return ids, nil
}

func (r *repo) findMealID(ctx context.Context, db *gorm.DB, meal domain.ProcessedMeal) (int64, error) {
	var row domain.Meal
	err := db.WithContext(ctx).
		Select("id").
		Where("name = ? AND dietary_flags = ?", meal.CleanedText, meal.DietaryFlags).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storageErr("find meal", err)
	}
	return row.ID, nil
}

func (r *repo) FindOrCreateMeal(ctx context.Context, db *gorm.DB, meal domain.ProcessedMeal, now time.Time) (int64, bool, error) {
	id, err := r.findMealID(ctx, db, meal)
	if err != nil {
		return 0, false, err
	}
	if id != 0 {
		return id, false, nil
	}

	row := domain.Meal{
		Name:         meal.CleanedText,
		DietaryFlags: meal.DietaryFlags,
		CreatedDate:  now,
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "dietary_flags"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return 0, false, storageErr("insert meal", res.Error)
	}

	if res.RowsAffected == 0 {
		// inserted concurrently by another run
		id, err := r.findMealID(ctx, db, meal)
		if err != nil {
			return 0, false, err
		}
		if id == 0 {
			return 0, false, storageErr("insert meal", gorm.ErrRecordNotFound)
		}
		return id, false, nil
	}

	if err := r.insertLinks(ctx, db, row.ID, meal); err != nil {
		return 0, false, err
	}
	return row.ID, true, nil
}

func (r *repo) insertLinks(ctx context.Context, db *gorm.DB, mealID int64, meal domain.ProcessedMeal) error {
	if len(meal.AllergenIDs) > 0 {
		links := make([]domain.MealAllergen, 0, len(meal.AllergenIDs))
		for _, id := range meal.AllergenIDs {
			links = append(links, domain.MealAllergen{MealID: mealID, AllergenID: id})
		}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return storageErr("link allergens", err)
		}
	}

	if len(meal.SupplementIDs) > 0 {
		links := make([]domain.MealSupplement, 0, len(meal.SupplementIDs))
		for _, id := range meal.SupplementIDs {
			links = append(links, domain.MealSupplement{MealID: mealID, SupplementID: id})
		}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return storageErr("link supplements", err)
		}
	}
	return nil
}

func (r *repo) FindCategoryID(ctx context.Context, db *gorm.DB, name string) (*int64, error) {
	var row domain.Category
	err := db.WithContext(ctx).Select("id").Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find category", err)
	}
	return &row.ID, nil
}

func (r *repo) UpsertPlanMeal(ctx context.Context, db *gorm.DB, entry domain.PlanMeal) error {
	if entry.CategoryID == nil {
		return r.upsertUncategorized(ctx, db, entry)
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "meal_id"}, {Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_order", "price"}),
		}).
		Create(&entry).Error
	if err != nil {
		return storageErr("upsert plan meal", err)
	}
	return nil
}

// upsertUncategorized handles NULL category ids, which unique indexes treat as distinct.
func (r *repo) upsertUncategorized(ctx context.Context, db *gorm.DB, entry domain.PlanMeal) error {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.PlanMeal{}).
		Where("date = ? AND meal_id = ? AND category_id IS NULL", entry.Date, entry.MealID).
		Count(&count).Error
	if err != nil {
		return storageErr("upsert plan meal", err)
	}

	if count > 0 {
		err = db.WithContext(ctx).
			Model(&domain.PlanMeal{}).
			Where("date = ? AND meal_id = ? AND category_id IS NULL", entry.Date, entry.MealID).
			Updates(map[string]any{"display_order": entry.DisplayOrder, "price": entry.Price}).Error
	} else {
		err = db.WithContext(ctx).Create(&entry).Error
	}
	if err != nil {
		return storageErr("upsert plan meal", err)
	}
	return nil
}

func (r *repo) UpsertPlanMetadata(ctx context.Context, db *gorm.DB, meta domain.PlanMetadata) error {
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"holiday", "notes", "updated_at"}),
		}).
		Create(&meta).Error
	if err != nil {
		return storageErr("upsert plan metadata", err)
	}
	return nil
}

func (r *repo) GetFingerprint(ctx context.Context, db *gorm.DB, start, end datatypes.Date) (string, bool, error) {
	var row domain.APIMetadata
	err := db.WithContext(ctx).
		Where("start_date = ? AND end_date = ?", start, end).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("get fingerprint", err)
	}
	return row.Hash, true, nil
}

func (r *repo) SaveFingerprint(ctx context.Context, db *gorm.DB, start, end datatypes.Date, hash string) error {
	row := domain.APIMetadata{StartDate: start, EndDate: end, Hash: hash}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "start_date"}, {Name: "end_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"hash"}),
		}).
		Create(&row).Error
	if err != nil {
		return storageErr("save fingerprint", err)
	}
	return nil
}
