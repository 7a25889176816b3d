package domain

import (
	"time"

	"github.com/smallbiznis/mensaplan/internal/menutext"
)

// Code is an allergen or supplement reference entry.
type Code struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Meal struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Dietary       string    `json:"dietary"`
	DietaryLabels []string  `json:"dietary_labels"`
	Allergens     []Code    `json:"allergens"`
	Supplements   []Code    `json:"supplements"`
	CreatedDate   time.Time `json:"created_date"`
}

// PlanEntry is one meal placed on a day. Category is nil for uncategorized entries.
type PlanEntry struct {
	Date         string    `json:"date"`
	Category     *Category `json:"category"`
	Meal         Meal      `json:"meal"`
	DisplayOrder int       `json:"display_order"`
	Price        float64   `json:"price"`
}

type DayPlan struct {
	Date    string      `json:"date"`
	Entries []PlanEntry `json:"entries"`
}

type Day struct {
	Date   string  `json:"date"`
	Closed bool    `json:"closed"`
	Notes  *string `json:"notes,omitempty"`
}

// MealRow is one row of the meals x allergens x supplements join.
type MealRow struct {
	MealID         int64                 `gorm:"column:meal_id"`
	MealName       string                `gorm:"column:meal_name"`
	DietaryFlags   menutext.DietaryFlags `gorm:"column:dietary_flags"`
	CreatedDate    time.Time             `gorm:"column:created_date"`
	AllergenID     *string               `gorm:"column:allergen_id"`
	AllergenName   *string               `gorm:"column:allergen_name"`
	SupplementID   *string               `gorm:"column:supplement_id"`
	SupplementName *string               `gorm:"column:supplement_name"`
}

// PlanRow extends MealRow with the plan entry columns.
type PlanRow struct {
	MealRow
	Date         time.Time `gorm:"column:date"`
	CategoryID   *int64    `gorm:"column:category_id"`
	CategoryName *string   `gorm:"column:category_name"`
	DisplayOrder int       `gorm:"column:display_order"`
	Price        float64   `gorm:"column:price"`
}

type DayRow struct {
	Date    time.Time `gorm:"column:date"`
	Holiday bool      `gorm:"column:holiday"`
	Notes   *string   `gorm:"column:notes"`
}
