package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryRulesCanonical(t *testing.T) {
	rules := DefaultCategoryRules()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "dairy keyword", in: "Vollmilch 3,5%", want: "Milch"},
		{name: "dairy keyword upper case", in: "MILCHREIS", want: "Milch"},
		{name: "legacy gluten free", in: "Allergie.glutenfrei", want: "Glutenfrei"},
		{name: "legacy gluten free is exact", in: "allergie.glutenfrei", want: "allergie.glutenfrei"},
		{name: "untouched", in: "Menü 1", want: "Menü 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Canonical(tt.in))
		})
	}
}

func TestStaticCategoryRulesHolder(t *testing.T) {
	holder := NewStaticCategoryRules(CategoryRules{Default: "Sonstiges"})
	assert.Equal(t, "Sonstiges", holder.Get().Default)
	assert.Empty(t, holder.Get().Aliases)
}

func TestValidateCategoryRules(t *testing.T) {
	assert.NoError(t, validateCategoryRules(DefaultCategoryRules()))
	assert.Error(t, validateCategoryRules(CategoryRules{Aliases: []CategoryAlias{{Contains: "x"}}}))
	assert.Error(t, validateCategoryRules(CategoryRules{Aliases: []CategoryAlias{{Target: "x"}}}))
}
