package seed

import (
	"context"
	"errors"

	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"github.com/smallbiznis/mensaplan/pkg/db"
	"gorm.io/gorm"
)

var allergens = []domain.Allergen{
	{ID: "A", Name: "Glutenhaltiges Getreide"},
	{ID: "B", Name: "Krebstiere"},
	{ID: "C", Name: "Eier"},
	{ID: "D", Name: "Fisch"},
	{ID: "E", Name: "Erdnüsse"},
	{ID: "F", Name: "Soja"},
	{ID: "G", Name: "Milch und Laktose"},
	{ID: "H", Name: "Schalenfrüchte"},
	{ID: "I", Name: "Sellerie"},
	{ID: "J", Name: "Senf"},
	{ID: "K", Name: "Sesamsamen"},
	{ID: "L", Name: "Schwefeldioxid und Sulfite"},
	{ID: "M", Name: "Lupinen"},
	{ID: "N", Name: "Weichtiere"},
}

var supplements = []domain.Supplement{
	{ID: "1", Name: "mit Farbstoff"},
	{ID: "2", Name: "mit Konservierungsstoff"},
	{ID: "3", Name: "mit Antioxidationsmittel"},
	{ID: "4", Name: "mit Geschmacksverstärker"},
	{ID: "5", Name: "geschwefelt"},
	{ID: "6", Name: "geschwärzt"},
	{ID: "7", Name: "gewachst"},
	{ID: "8", Name: "mit Phosphat"},
	{ID: "9", Name: "mit Süßungsmittel"},
	{ID: "10", Name: "enthält eine Phenylalaninquelle"},
	{ID: "11", Name: "koffeinhaltig"},
	{ID: "12", Name: "chininhaltig"},
	{ID: "13", Name: "mit Zuckerart und Süßungsmitteln"},
	{ID: "14", Name: "mit Nitritpökelsalz"},
	{ID: "15", Name: "mit Milcheiweiß"},
}

var categories = []string{"N/A", "Milch", "Glutenfrei"}

// EnsureReference seeds allergen and supplement codes and the default categories.
// Existing rows are left untouched.
func EnsureReference(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range allergens {
			if err := ensureRow(tx, &domain.Allergen{}, "id = ?", a.ID, &a); err != nil {
				return err
			}
		}
		for _, s := range supplements {
			if err := ensureRow(tx, &domain.Supplement{}, "id = ?", s.ID, &s); err != nil {
				return err
			}
		}
		for _, name := range categories {
			row := domain.Category{Name: name}
			if err := ensureRow(tx, &domain.Category{}, "name = ?", name, &row); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureRow(tx *gorm.DB, model any, cond string, key any, row any) error {
	var count int64
	if err := tx.Model(model).Where(cond, key).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := tx.Create(row).Error; err != nil && !db.IsDuplicateKeyErr(err) {
		return err
	}
	return nil
}
