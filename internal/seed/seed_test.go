package seed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/mensaplan/internal/mealplan/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Allergen{}, &domain.Supplement{}, &domain.Category{}))
	return conn
}

func TestEnsureReferenceIsIdempotent(t *testing.T) {
	conn := setupTestDB(t)

	require.NoError(t, EnsureReference(conn))
	require.NoError(t, EnsureReference(conn))

	var count int64
	require.NoError(t, conn.Model(&domain.Allergen{}).Count(&count).Error)
	assert.Equal(t, int64(14), count)
	require.NoError(t, conn.Model(&domain.Supplement{}).Count(&count).Error)
	assert.Equal(t, int64(15), count)
	require.NoError(t, conn.Model(&domain.Category{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	var na domain.Category
	require.NoError(t, conn.Where("name = ?", "N/A").First(&na).Error)
	assert.NotZero(t, na.ID)
}

func TestEnsureReferenceKeepsExistingNames(t *testing.T) {
	conn := setupTestDB(t)
	require.NoError(t, conn.Create(&domain.Allergen{ID: "A", Name: "Gluten"}).Error)

	require.NoError(t, EnsureReference(conn))

	var a domain.Allergen
	require.NoError(t, conn.First(&a, "id = ?", "A").Error)
	assert.Equal(t, "Gluten", a.Name)
}

func TestEnsureReferenceRequiresHandle(t *testing.T) {
	assert.Error(t, EnsureReference(nil))
}
