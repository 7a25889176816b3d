package domain

import (
	"context"
	"time"
)

type Service interface {
	// ImportRange fetches the vendor plan for [start, end] and reconciles it into the store.
	ImportRange(ctx context.Context, start, end time.Time) (*ImportResult, error)
}

type ImportResult struct {
	DaysProcessed     int `json:"days_processed"`
	MealsInserted     int `json:"meals_inserted"`
	PlanMealsInserted int `json:"plan_meals_inserted"`
}

func (r *ImportResult) Add(other ImportResult) {
	r.DaysProcessed += other.DaysProcessed
	r.MealsInserted += other.MealsInserted
	r.PlanMealsInserted += other.PlanMealsInserted
}
