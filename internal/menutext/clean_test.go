package menutext

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "legend line dropped", raw: "Gulasch [br] (A,C) (1,2)", want: "Gulasch"},
		{name: "comma spacing", raw: "Salat,Tomate", want: "Salat, Tomate"},
		{name: "comma already spaced", raw: "Salat, Tomate", want: "Salat, Tomate"},
		{name: "inline markers removed", raw: "Hähnchen(2,10) mit Reis(A)[br]Dessert(C,G)[br]Legende (A)", want: "Hähnchen mit Reis Dessert"},
		{name: "out of range additive kept", raw: "Brot(16)[br](A)", want: "Brot(16)"},
		{name: "out of range allergen kept", raw: "Brot(O)[br](A)", want: "Brot(O)"},
		{name: "empty lines removed", raw: "Suppe[br] [br]Brot[br](1)", want: "Suppe Brot"},
		{name: "last line without parentheses kept", raw: "Suppe[br]Brot", want: "Suppe Brot"},
		{name: "space before marker kept", raw: "Schnitzel (A,C)[br]mit Pommes", want: "Schnitzel  mit Pommes"},
		{name: "marker mid line leaves double space", raw: "Curry (F) mit Reis[br](F)", want: "Curry  mit Reis"},
		{name: "trailing marker trimmed", raw: "Suppe[br]Brot (1)[br]Legende (A)", want: "Suppe Brot"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.raw))
		})
	}
}

func TestCleanTextDeterministic(t *testing.T) {
	raw := "Linsen(1,2),Spätzle(A,C)[br]vegan[br](A,C)"
	first := CleanText(raw)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, CleanText(raw))
	}
	assert.Equal(t, "Linsen, Spätzle vegan", first)
}

func TestTruncateName(t *testing.T) {
	short := strings.Repeat("a", 248)
	assert.Equal(t, short, TruncateName(short))

	exact := strings.Repeat("b", 250)
	assert.Equal(t, exact, TruncateName(exact))

	long := strings.Repeat("c", 260)
	got := TruncateName(long)
	assert.Equal(t, strings.Repeat("c", 247)+"…", got)
	assert.Equal(t, 248, utf8.RuneCountInString(got))
}

func TestTruncateNameCountsRunes(t *testing.T) {
	name := strings.Repeat("ü", 250)
	assert.Equal(t, name, TruncateName(name))
}
