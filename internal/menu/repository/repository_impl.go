package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	mealplan "github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"github.com/smallbiznis/mensaplan/internal/menu/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const mealColumns = `meals.id AS meal_id, meals.name AS meal_name, meals.dietary_flags, meals.created_date,
	allergens.id AS allergen_id, allergens.name AS allergen_name,
	supplements.id AS supplement_id, supplements.name AS supplement_name`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", mealplan.ErrStorage, op, err)
}

func withCodes(stmt *gorm.DB) *gorm.DB {
	return stmt.
		Joins("LEFT JOIN meal_allergens ON meal_allergens.meal_id = meals.id").
		Joins("LEFT JOIN allergens ON allergens.id = meal_allergens.allergen_id").
		Joins("LEFT JOIN meal_supplements ON meal_supplements.meal_id = meals.id").
		Joins("LEFT JOIN supplements ON supplements.id = meal_supplements.supplement_id")
}

func (r *repo) ListAllergens(ctx context.Context, db *gorm.DB, id string) ([]domain.Code, error) {
	var codes []domain.Code
	stmt := db.WithContext(ctx).Model(&mealplan.Allergen{}).Select("id, name")
	if id != "" {
		stmt = stmt.Where("id = ?", id)
	}
	if err := stmt.Order("id").Scan(&codes).Error; err != nil {
		return nil, storageErr("list allergens", err)
	}
	return codes, nil
}

func (r *repo) ListSupplements(ctx context.Context, db *gorm.DB, id string) ([]domain.Code, error) {
	var codes []domain.Code
	stmt := db.WithContext(ctx).Model(&mealplan.Supplement{}).Select("id, name")
	if id != "" {
		stmt = stmt.Where("id = ?", id)
	}
	if err := stmt.Scan(&codes).Error; err != nil {
		return nil, storageErr("list supplements", err)
	}
	return codes, nil
}

func (r *repo) ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var rows []mealplan.Category
	if err := db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, storageErr("list categories", err)
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, domain.Category{ID: row.ID, Name: row.Name})
	}
	return categories, nil
}

func (r *repo) ListMealIDs(ctx context.Context, db *gorm.DB, afterID int64, limit int) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).
		Model(&mealplan.Meal{}).
		Where("id > ?", afterID).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, storageErr("list meal ids", err)
	}
	return ids, nil
}

func (r *repo) ListMealRows(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.MealRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []domain.MealRow
	err := withCodes(db.WithContext(ctx).Table("meals").Select(mealColumns)).
		Where("meals.id IN ?", ids).
		Order("meals.id, allergens.id, supplements.id").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("list meals", err)
	}
	return rows, nil
}

func (r *repo) ListPlanRows(ctx context.Context, db *gorm.DB, from datatypes.Date, to *datatypes.Date) ([]domain.PlanRow, error) {
	stmt := db.WithContext(ctx).
		Table("plan_meals").
		Select(mealColumns + `, plan_meals.date, plan_meals.display_order, plan_meals.price,
			categories.id AS category_id, categories.name AS category_name`).
		Joins("INNER JOIN meals ON meals.id = plan_meals.meal_id").
		Joins("LEFT JOIN categories ON categories.id = plan_meals.category_id")
	stmt = withCodes(stmt).Where("plan_meals.date >= ?", from)
	if to != nil {
		stmt = stmt.Where("plan_meals.date <= ?", *to)
	}

	var rows []domain.PlanRow
	err := stmt.
		Order("plan_meals.date, plan_meals.display_order, meals.id, allergens.id, supplements.id").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("list plan entries", err)
	}
	return rows, nil
}

func (r *repo) ListDays(ctx context.Context, db *gorm.DB, from *datatypes.Date) ([]domain.DayRow, error) {
	stmt := db.WithContext(ctx).Model(&mealplan.PlanMetadata{}).Select("date, holiday, notes")
	if from != nil {
		stmt = stmt.Where("date >= ?", *from)
	}

	var rows []domain.DayRow
	if err := stmt.Order("date").Scan(&rows).Error; err != nil {
		return nil, storageErr("list days", err)
	}
	return rows, nil
}

func (r *repo) FindDay(ctx context.Context, db *gorm.DB, date datatypes.Date) (*domain.DayRow, error) {
	var row mealplan.PlanMetadata
	err := db.WithContext(ctx).Where("date = ?", date).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find day", err)
	}
	return &domain.DayRow{Date: time.Time(row.Date), Holiday: row.Holiday, Notes: row.Notes}, nil
}
