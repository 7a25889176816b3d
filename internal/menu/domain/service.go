package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/mensaplan/pkg/db/pagination"
)

type ListMealsRequest struct {
	PageToken string
	PageSize  int
}

type ListMealsResponse struct {
	pagination.PageInfo
	Meals []Meal `json:"meals"`
}

// RangeRequest carries dates as YYYY-MM-DD. To is optional.
type RangeRequest struct {
	From string
	To   string
}

type Service interface {
	ListAllergens(ctx context.Context) ([]Code, error)
	GetAllergen(ctx context.Context, id string) (Code, error)
	ListSupplements(ctx context.Context) ([]Code, error)
	GetSupplement(ctx context.Context, id string) (Code, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListMeals(ctx context.Context, req ListMealsRequest) (ListMealsResponse, error)
	GetMeal(ctx context.Context, id string) (Meal, error)
	DayPlan(ctx context.Context, date string) ([]PlanEntry, error)
	RangePlan(ctx context.Context, req RangeRequest) ([]DayPlan, error)
	ListDays(ctx context.Context, from string) ([]Day, error)
	GetDay(ctx context.Context, date string) (Day, error)
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidDate  = errors.New("invalid_date")
	ErrInvalidRange = errors.New("invalid_range")
	ErrNotFound     = errors.New("not_found")
)
