package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/mensaplan/internal/config"
	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"github.com/smallbiznis/mensaplan/internal/menutext"
	"github.com/smallbiznis/mensaplan/internal/upstream"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dayKeyLayout = "2006-01-02"

// referenceCodes holds the allergen and supplement codes known to the store.
type referenceCodes struct {
	allergens   menutext.CodeSet
	supplements menutext.CodeSet
}

func (s *Service) loadCodes(ctx context.Context, tx *gorm.DB) (referenceCodes, error) {
	allergens, err := s.repo.ListAllergenIDs(ctx, tx)
	if err != nil {
		return referenceCodes{}, err
	}
	supplements, err := s.repo.ListSupplementIDs(ctx, tx)
	if err != nil {
		return referenceCodes{}, err
	}
	return referenceCodes{
		allergens:   menutext.NewCodeSet(allergens...),
		supplements: menutext.NewCodeSet(supplements...),
	}, nil
}

func processMeal(menu upstream.DayMenu, codes referenceCodes) domain.ProcessedMeal {
	cleaned := menutext.CleanText(menu.MenueText)
	allergens := menutext.AllergenIDs(menu.MenueText, codes.allergens)
	return domain.ProcessedMeal{
		Name:          menu.Bezeichnung,
		CleanedText:   cleaned,
		AllergenIDs:   allergens,
		SupplementIDs: menutext.SupplementIDs(menu.MenueText, codes.supplements),
		DietaryFlags:  menutext.ComputeDietaryFlags(menu.Bezeichnung, menu.MenueText, codes.allergens),
	}
}

func parseDay(key string) (datatypes.Date, error) {
	day, err := time.ParseInLocation(dayKeyLayout, strings.TrimSpace(key), time.UTC)
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("%w: invalid day key %q", domain.ErrUpstream, key)
	}
	return datatypes.Date(day), nil
}

// resolveCategory maps the vendor label to a stored category, falling back to the default bucket.
func (s *Service) resolveCategory(ctx context.Context, tx *gorm.DB, rules config.CategoryRules, label string) (*int64, error) {
	id, err := s.repo.FindCategoryID(ctx, tx, rules.Canonical(label))
	if err != nil || id != nil {
		return id, err
	}
	if rules.Default == "" {
		return nil, nil
	}
	return s.repo.FindCategoryID(ctx, tx, rules.Default)
}

// importDay reconciles one vendor day. Counts are rows touched, not net changes.
func (s *Service) importDay(ctx context.Context, tx *gorm.DB, codes referenceCodes, rules config.CategoryRules, day upstream.PlanDay) (domain.ImportResult, error) {
	date, err := parseDay(day.Key)
	if err != nil {
		return domain.ImportResult{}, err
	}

	now := s.clock.Now()
	if err := s.repo.UpsertPlanMetadata(ctx, tx, domain.PlanMetadata{
		Date:      date,
		Holiday:   day.Feiertag,
		UpdatedAt: now,
	}); err != nil {
		return domain.ImportResult{}, err
	}

	result := domain.ImportResult{DaysProcessed: 1}
	for _, menu := range day.Menus() {
		if menu.Gesperrt {
			continue
		}

		meal := processMeal(menu, codes)
		mealID, _, err := s.repo.FindOrCreateMeal(ctx, tx, meal, now)
		if err != nil {
			return domain.ImportResult{}, err
		}
		result.MealsInserted++

		categoryID, err := s.resolveCategory(ctx, tx, rules, meal.Name)
		if err != nil {
			return domain.ImportResult{}, err
		}

		if err := s.repo.UpsertPlanMeal(ctx, tx, domain.PlanMeal{
			Date:         date,
			MealID:       mealID,
			CategoryID:   categoryID,
			DisplayOrder: menu.MenueNr,
			Price:        0,
		}); err != nil {
			return domain.ImportResult{}, err
		}
		result.PlanMealsInserted++
	}

	return result, nil
}

// importBatch reconciles every day of the payload inside one transaction.
func (s *Service) importBatch(ctx context.Context, payload *upstream.Response) (domain.ImportResult, error) {
	var total domain.ImportResult
	if payload == nil {
		return total, nil
	}

	rules := config.DefaultCategoryRules()
	if s.categories != nil {
		rules = s.categories.Get()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		codes, err := s.loadCodes(ctx, tx)
		if err != nil {
			return err
		}

		for _, day := range payload.Content.SpeiseplanTage {
			result, err := s.importDay(ctx, tx, codes, rules, day)
			if err != nil {
				s.log.Warn("day import failed, rolling back batch",
					zap.String("day", day.Key),
					zap.Error(err),
				)
				return err
			}
			total.Add(result)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrUpstream) && !errors.Is(err, domain.ErrStorage) {
			err = fmt.Errorf("%w: transaction: %w", domain.ErrStorage, err)
		}
		return domain.ImportResult{}, err
	}
	return total, nil
}
