package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/mensaplan/internal/menu/domain"
	"github.com/smallbiznis/mensaplan/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("menu.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListAllergens(ctx context.Context) ([]domain.Code, error) {
	return s.repo.ListAllergens(ctx, s.db, "")
}

func (s *Service) GetAllergen(ctx context.Context, id string) (domain.Code, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return domain.Code{}, domain.ErrInvalidID
	}
	codes, err := s.repo.ListAllergens(ctx, s.db, id)
	if err != nil {
		return domain.Code{}, err
	}
	if len(codes) == 0 {
		return domain.Code{}, domain.ErrNotFound
	}
	return codes[0], nil
}

func (s *Service) ListSupplements(ctx context.Context) ([]domain.Code, error) {
	codes, err := s.repo.ListSupplements(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	sortCodes(codes, true)
	return codes, nil
}

func (s *Service) GetSupplement(ctx context.Context, id string) (domain.Code, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Code{}, domain.ErrInvalidID
	}
	codes, err := s.repo.ListSupplements(ctx, s.db, id)
	if err != nil {
		return domain.Code{}, err
	}
	if len(codes) == 0 {
		return domain.Code{}, domain.ErrNotFound
	}
	return codes[0], nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx, s.db)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].Slug = slug.Make(categories[i].Name)
	}
	return categories, nil
}

func (s *Service) ListMeals(ctx context.Context, req domain.ListMealsRequest) (domain.ListMealsResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	cursor, err := pagination.DecodeCursor(page.PageToken)
	if err != nil {
		return domain.ListMealsResponse{}, err
	}

	limit := page.Limit()
	ids, err := s.repo.ListMealIDs(ctx, s.db, cursor.ID, limit+1)
	if err != nil {
		return domain.ListMealsResponse{}, err
	}

	ids, pageInfo := pagination.BuildCursorPageInfo(ids, limit, func(id int64) pagination.Cursor {
		return pagination.Cursor{ID: id}
	})

	rows, err := s.repo.ListMealRows(ctx, s.db, ids)
	if err != nil {
		return domain.ListMealsResponse{}, err
	}

	return domain.ListMealsResponse{PageInfo: pageInfo, Meals: foldMeals(rows)}, nil
}

func (s *Service) GetMeal(ctx context.Context, id string) (domain.Meal, error) {
	mealID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || mealID <= 0 {
		return domain.Meal{}, domain.ErrInvalidID
	}

	rows, err := s.repo.ListMealRows(ctx, s.db, []int64{mealID})
	if err != nil {
		return domain.Meal{}, err
	}
	meals := foldMeals(rows)
	if len(meals) == 0 {
		return domain.Meal{}, domain.ErrNotFound
	}
	return meals[0], nil
}

func (s *Service) DayPlan(ctx context.Context, date string) ([]domain.PlanEntry, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListPlanRows(ctx, s.db, day, &day)
	if err != nil {
		return nil, err
	}
	return foldPlan(rows), nil
}

func (s *Service) RangePlan(ctx context.Context, req domain.RangeRequest) ([]domain.DayPlan, error) {
	from, err := parseDate(req.From)
	if err != nil {
		return nil, err
	}

	var to *datatypes.Date
	if strings.TrimSpace(req.To) != "" {
		end, err := parseDate(req.To)
		if err != nil {
			return nil, err
		}
		if time.Time(end).Before(time.Time(from)) {
			return nil, domain.ErrInvalidRange
		}
		to = &end
	}

	rows, err := s.repo.ListPlanRows(ctx, s.db, from, to)
	if err != nil {
		return nil, err
	}
	return groupByDay(foldPlan(rows)), nil
}

func (s *Service) ListDays(ctx context.Context, from string) ([]domain.Day, error) {
	var start *datatypes.Date
	if strings.TrimSpace(from) != "" {
		day, err := parseDate(from)
		if err != nil {
			return nil, err
		}
		start = &day
	}

	rows, err := s.repo.ListDays(ctx, s.db, start)
	if err != nil {
		return nil, err
	}

	days := make([]domain.Day, 0, len(rows))
	for _, row := range rows {
		days = append(days, dayOf(row))
	}
	return days, nil
}

func (s *Service) GetDay(ctx context.Context, date string) (domain.Day, error) {
	day, err := parseDate(date)
	if err != nil {
		return domain.Day{}, err
	}

	row, err := s.repo.FindDay(ctx, s.db, day)
	if err != nil {
		return domain.Day{}, err
	}
	if row == nil {
		return domain.Day{}, domain.ErrNotFound
	}
	return dayOf(*row), nil
}

func dayOf(row domain.DayRow) domain.Day {
	return domain.Day{Date: formatDate(row.Date), Closed: row.Holiday, Notes: row.Notes}
}

func parseDate(value string) (datatypes.Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return datatypes.Date{}, domain.ErrInvalidDate
	}
	return datatypes.Date(t), nil
}
