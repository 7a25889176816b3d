package service

import (
	"sort"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/mensaplan/internal/menu/domain"
)

const dateLayout = "2006-01-02"

// ordered keeps insertion order for folded rows.
type ordered[K comparable, V any] struct {
	keys  []K
	items map[K]*V
}

func newOrdered[K comparable, V any]() *ordered[K, V] {
	return &ordered[K, V]{items: make(map[K]*V)}
}

func (o *ordered[K, V]) getOrInsert(key K, build func() V) *V {
	if item, ok := o.items[key]; ok {
		return item
	}
	item := build()
	o.items[key] = &item
	o.keys = append(o.keys, key)
	return &item
}

func (o *ordered[K, V]) each(fn func(*V)) {
	for _, key := range o.keys {
		fn(o.items[key])
	}
}

// mealAcc collects the associations of one meal, dropping the duplicates the
// allergen x supplement join produces.
type mealAcc struct {
	meal        domain.Meal
	allergens   map[string]struct{}
	supplements map[string]struct{}
}

func newMealAcc(row domain.MealRow) mealAcc {
	return mealAcc{
		meal: domain.Meal{
			ID:            row.MealID,
			Name:          row.MealName,
			Dietary:       row.DietaryFlags.String(),
			DietaryLabels: row.DietaryFlags.Labels(),
			Allergens:     []domain.Code{},
			Supplements:   []domain.Code{},
			CreatedDate:   row.CreatedDate.UTC(),
		},
		allergens:   map[string]struct{}{},
		supplements: map[string]struct{}{},
	}
}

func (a *mealAcc) add(row domain.MealRow) {
	if row.AllergenID != nil && row.AllergenName != nil {
		if _, seen := a.allergens[*row.AllergenID]; !seen {
			a.allergens[*row.AllergenID] = struct{}{}
			a.meal.Allergens = append(a.meal.Allergens, domain.Code{ID: *row.AllergenID, Name: *row.AllergenName})
		}
	}
	if row.SupplementID != nil && row.SupplementName != nil {
		if _, seen := a.supplements[*row.SupplementID]; !seen {
			a.supplements[*row.SupplementID] = struct{}{}
			a.meal.Supplements = append(a.meal.Supplements, domain.Code{ID: *row.SupplementID, Name: *row.SupplementName})
		}
	}
}

func (a *mealAcc) result() domain.Meal {
	sortCodes(a.meal.Allergens, false)
	sortCodes(a.meal.Supplements, true)
	return a.meal
}

func foldMeals(rows []domain.MealRow) []domain.Meal {
	acc := newOrdered[int64, mealAcc]()
	for _, row := range rows {
		acc.getOrInsert(row.MealID, func() mealAcc { return newMealAcc(row) }).add(row)
	}

	meals := make([]domain.Meal, 0, len(acc.keys))
	acc.each(func(m *mealAcc) { meals = append(meals, m.result()) })
	return meals
}

type entryKey struct {
	date   string
	mealID int64
}

type entryAcc struct {
	entry domain.PlanEntry
	meal  mealAcc
}

func foldPlan(rows []domain.PlanRow) []domain.PlanEntry {
	acc := newOrdered[entryKey, entryAcc]()
	for _, row := range rows {
		key := entryKey{date: formatDate(row.Date), mealID: row.MealID}
		item := acc.getOrInsert(key, func() entryAcc {
			return entryAcc{
				entry: domain.PlanEntry{
					Date:         key.date,
					Category:     categoryOf(row),
					DisplayOrder: row.DisplayOrder,
					Price:        row.Price,
				},
				meal: newMealAcc(row.MealRow),
			}
		})
		item.meal.add(row.MealRow)
	}

	entries := make([]domain.PlanEntry, 0, len(acc.keys))
	acc.each(func(e *entryAcc) {
		e.entry.Meal = e.meal.result()
		entries = append(entries, e.entry)
	})
	return entries
}

// groupByDay expects entries ordered by date.
func groupByDay(entries []domain.PlanEntry) []domain.DayPlan {
	days := make([]domain.DayPlan, 0)
	for _, entry := range entries {
		if n := len(days); n > 0 && days[n-1].Date == entry.Date {
			days[n-1].Entries = append(days[n-1].Entries, entry)
			continue
		}
		days = append(days, domain.DayPlan{Date: entry.Date, Entries: []domain.PlanEntry{entry}})
	}
	return days
}

func categoryOf(row domain.PlanRow) *domain.Category {
	if row.CategoryID == nil || row.CategoryName == nil {
		return nil
	}
	return &domain.Category{ID: *row.CategoryID, Name: *row.CategoryName, Slug: slug.Make(*row.CategoryName)}
}

// sortCodes orders supplement codes numerically and allergen codes lexically.
func sortCodes(codes []domain.Code, numeric bool) {
	sort.SliceStable(codes, func(i, j int) bool {
		if numeric {
			a, errA := strconv.Atoi(codes[i].ID)
			b, errB := strconv.Atoi(codes[j].ID)
			if errA == nil && errB == nil {
				return a < b
			}
		}
		return codes[i].ID < codes[j].ID
	})
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
