package domain

import (
	"time"

	"github.com/smallbiznis/mensaplan/internal/menutext"
	"gorm.io/datatypes"
)

type Allergen struct {
	ID   string `json:"id" gorm:"type:char(1);primaryKey;column:id"`
	Name string `json:"name" gorm:"type:varchar(255);not null"`
}

func (Allergen) TableName() string { return "allergens" }

type Supplement struct {
	ID   string `json:"id" gorm:"type:varchar(2);primaryKey;column:id"`
	Name string `json:"name" gorm:"type:varchar(255);not null"`
}

func (Supplement) TableName() string { return "supplements" }

// Meal is identified by its natural key (name, dietary_flags).
type Meal struct {
	ID           int64                 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string                `json:"name" gorm:"type:varchar(512);not null;uniqueIndex:ux_meals_name_flags,priority:1"`
	DietaryFlags menutext.DietaryFlags `json:"dietary_flags" gorm:"column:dietary_flags;type:smallint;not null;default:0;uniqueIndex:ux_meals_name_flags,priority:2"`
	CreatedDate  time.Time             `json:"created_date" gorm:"column:created_date;not null"`
}

func (Meal) TableName() string { return "meals" }

type MealAllergen struct {
	MealID     int64  `gorm:"column:meal_id;primaryKey;autoIncrement:false"`
	AllergenID string `gorm:"column:allergen_id;type:char(1);primaryKey"`
}

func (MealAllergen) TableName() string { return "meal_allergens" }

type MealSupplement struct {
	MealID       int64  `gorm:"column:meal_id;primaryKey;autoIncrement:false"`
	SupplementID string `gorm:"column:supplement_id;type:varchar(2);primaryKey"`
}

func (MealSupplement) TableName() string { return "meal_supplements" }

type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:ux_categories_name"`
}

func (Category) TableName() string { return "categories" }

// PlanMeal places a meal on a day within a category.
type PlanMeal struct {
	Date         datatypes.Date `gorm:"column:date;type:date;not null;uniqueIndex:ux_plan_meals_entry,priority:1"`
	MealID       int64          `gorm:"column:meal_id;not null;uniqueIndex:ux_plan_meals_entry,priority:2"`
	CategoryID   *int64         `gorm:"column:category_id;uniqueIndex:ux_plan_meals_entry,priority:3"`
	DisplayOrder int            `gorm:"column:display_order;not null;default:0"`
	Price        float64        `gorm:"column:price;type:decimal(6,2);not null;default:0"`
}

func (PlanMeal) TableName() string { return "plan_meals" }

type PlanMetadata struct {
	Date      datatypes.Date `gorm:"column:date;type:date;primaryKey"`
	Holiday   bool           `gorm:"column:holiday;not null;default:false"`
	Notes     *string        `gorm:"column:notes;type:text"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
}

func (PlanMetadata) TableName() string { return "plan_metadata" }

// APIMetadata stores the last seen upstream change token for an exact date range.
type APIMetadata struct {
	StartDate datatypes.Date `gorm:"column:start_date;type:date;primaryKey"`
	EndDate   datatypes.Date `gorm:"column:end_date;type:date;primaryKey"`
	Hash      string         `gorm:"column:hash;type:varchar(255);not null"`
}

func (APIMetadata) TableName() string { return "api_metadata" }

// ProcessedMeal is a vendor menu entry after cleaning and metadata extraction.
type ProcessedMeal struct {
	Name          string
	CleanedText   string
	AllergenIDs   []string
	SupplementIDs []string
	DietaryFlags  menutext.DietaryFlags
}
