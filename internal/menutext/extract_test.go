package menutext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCodes(t *testing.T) {
	text := "(A,C) und (2,5)"
	allergens := NewCodeSet("A", "C", "G")
	supplements := NewCodeSet("2", "9")

	assert.Equal(t, []string{"A", "C"}, AllergenIDs(text, allergens))
	assert.Equal(t, []string{"2"}, SupplementIDs(text, supplements))
}

func TestAllergenIDsSortedAndDeduplicated(t *testing.T) {
	known := NewCodeSet("A", "C", "G", "L")
	got := AllergenIDs("Käse(G,C) Brot(A,G)[br](L,A)", known)
	assert.Equal(t, []string{"A", "C", "G", "L"}, got)
}

func TestSupplementIDsSortedNumerically(t *testing.T) {
	known := NewCodeSet("1", "2", "10", "15")
	got := SupplementIDs("Wurst(10,2) Soße(15,1,2)", known)
	assert.Equal(t, []string{"1", "2", "10", "15"}, got)
}

func TestExtractIgnoresOutOfRangeGroups(t *testing.T) {
	known := NewCodeSet("1", "16", "A", "O")
	assert.Empty(t, SupplementIDs("Brot(16)", known))
	assert.Empty(t, AllergenIDs("Brot(O)", known))
	assert.Empty(t, AllergenIDs("Brot(a)", known))
}

func TestExtractNoMatches(t *testing.T) {
	known := NewCodeSet("A")
	got := AllergenIDs("Kartoffeln", known)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
