package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"github.com/smallbiznis/mensaplan/internal/mealplan/repository"
	"github.com/smallbiznis/mensaplan/internal/menutext"
	"github.com/smallbiznis/mensaplan/internal/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var now = time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC)

func TestListReferenceCodes(t *testing.T) {
	db := storetest.OpenSeeded(t)
	repo := repository.Provide()

	allergens, err := repo.ListAllergenIDs(context.Background(), db)
	require.NoError(t, err)
	assert.Len(t, allergens, 14)
	assert.Equal(t, "A", allergens[0])

	supplements, err := repo.ListSupplementIDs(context.Background(), db)
	require.NoError(t, err)
	assert.Len(t, supplements, 15)
}

func TestFindOrCreateMeal(t *testing.T) {
	db := storetest.OpenSeeded(t)
	repo := repository.Provide()
	ctx := context.Background()

	meal := domain.ProcessedMeal{
		Name:          "Menü 1",
		CleanedText:   "Schnitzel mit Pommes",
		AllergenIDs:   []string{"A", "C"},
		SupplementIDs: []string{"1"},
		DietaryFlags:  0,
	}

	id, created, err := repo.FindOrCreateMeal(ctx, db, meal, now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, id)

	// same natural key with different codes keeps the original links
	meal.AllergenIDs = []string{"G"}
	again, created, err := repo.FindOrCreateMeal(ctx, db, meal, now)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	var links []domain.MealAllergen
	require.NoError(t, db.Where("meal_id = ?", id).Order("allergen_id").Find(&links).Error)
	require.Len(t, links, 2)
	assert.Equal(t, "A", links[0].AllergenID)

	// a different flag set is a different meal
	meal.DietaryFlags = menutext.GlutenFree
	other, created, err := repo.FindOrCreateMeal(ctx, db, meal, now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, id, other)
}

func TestFindCategoryID(t *testing.T) {
	db := storetest.OpenSeeded(t)
	repo := repository.Provide()

	id, err := repo.FindCategoryID(context.Background(), db, "Milch")
	require.NoError(t, err)
	require.NotNil(t, id)

	missing, err := repo.FindCategoryID(context.Background(), db, "Menü 9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpsertPlanMealUpdatesInPlace(t *testing.T) {
	db := storetest.OpenSeeded(t)
	repo := repository.Provide()
	ctx := context.Background()

	mealID, _, err := repo.FindOrCreateMeal(ctx, db, domain.ProcessedMeal{CleanedText: "Suppe"}, now)
	require.NoError(t, err)
	categoryID, err := repo.FindCategoryID(ctx, db, "N/A")
	require.NoError(t, err)

	date := datatypes.Date(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.UpsertPlanMeal(ctx, db, domain.PlanMeal{Date: date, MealID: mealID, CategoryID: categoryID, DisplayOrder: 1}))
	require.NoError(t, repo.UpsertPlanMeal(ctx, db, domain.PlanMeal{Date: date, MealID: mealID, CategoryID: categoryID, DisplayOrder: 5, Price: 3.5}))

	var entries []domain.PlanMeal
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].DisplayOrder)
	assert.InDelta(t, 3.5, entries[0].Price, 0.001)
}

func TestUpsertPlanMetadata(t *testing.T) {
	db := storetest.Open(t)
	repo := repository.Provide()
	ctx := context.Background()
	date := datatypes.Date(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC))

	require.NoError(t, repo.UpsertPlanMetadata(ctx, db, domain.PlanMetadata{Date: date, Holiday: false, UpdatedAt: now}))
	require.NoError(t, repo.UpsertPlanMetadata(ctx, db, domain.PlanMetadata{Date: date, Holiday: true, UpdatedAt: now.Add(time.Hour)}))

	var rows []domain.PlanMetadata
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Holiday)
}

func TestFingerprintRoundTrip(t *testing.T) {
	db := storetest.Open(t)
	repo := repository.Provide()
	ctx := context.Background()
	start := datatypes.Date(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC))
	end := datatypes.Date(time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC))

	_, found, err := repo.GetFingerprint(ctx, db, start, end)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.SaveFingerprint(ctx, db, start, end, "a"))
	require.NoError(t, repo.SaveFingerprint(ctx, db, start, end, "b"))

	hash, found, err := repo.GetFingerprint(ctx, db, start, end)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "b", hash)

	// fingerprints are keyed by the exact range
	_, found, err = repo.GetFingerprint(ctx, db, start, start)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	db := storetest.Open(t)
	require.NoError(t, db.Migrator().DropTable(&domain.Category{}))

	_, err := repository.Provide().FindCategoryID(context.Background(), db, "N/A")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
}
