package menutext

import (
	"strings"

	"golang.org/x/text/cases"
)

// DietaryFlags packs dietary classifications into a bitset.
type DietaryFlags uint8

const (
	Vegetarian DietaryFlags = 1 << iota
	Vegan
	GlutenFree
)

// GlutenAllergen is the allergen code for gluten-containing cereals.
const GlutenAllergen = "A"

var dietaryLabels = []struct {
	flag  DietaryFlags
	label string
}{
	{Vegetarian, "vegetarian"},
	{Vegan, "vegan"},
	{GlutenFree, "gluten-free"},
}

// ComputeDietaryFlags classifies a meal from its own name and text.
func ComputeDietaryFlags(name, text string, knownAllergens CodeSet) DietaryFlags {
	var flags DietaryFlags
	combined := cases.Fold().String(name + " " + text)

	if strings.Contains(combined, "vegetarisch") || strings.Contains(combined, "(veg)") || strings.Contains(combined, "veg.") {
		flags |= Vegetarian
	}
	if strings.Contains(combined, "vegan") {
		flags |= Vegan | Vegetarian
	}

	gluten := false
	for _, id := range AllergenIDs(text, knownAllergens) {
		if id == GlutenAllergen {
			gluten = true
			break
		}
	}
	if !gluten {
		flags |= GlutenFree
	}

	return flags
}

func (f DietaryFlags) Has(flag DietaryFlags) bool {
	return f&flag == flag
}

// Labels returns the names of the set bits in bit order.
func (f DietaryFlags) Labels() []string {
	labels := make([]string, 0, len(dietaryLabels))
	for _, item := range dietaryLabels {
		if f.Has(item.flag) {
			labels = append(labels, item.label)
		}
	}
	return labels
}

func (f DietaryFlags) String() string {
	return strings.Join(f.Labels(), ", ")
}
