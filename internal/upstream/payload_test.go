package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanDaysKeepsDocumentOrder(t *testing.T) {
	var content Content
	raw := `{"speiseplanTage": {"c": {"datum": "3"}, "a": {"datum": "1"}, "b": {"datum": "2"}}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &content))

	keys := make([]string, 0, len(content.SpeiseplanTage))
	for _, day := range content.SpeiseplanTage {
		keys = append(keys, day.Key)
	}
	assert.Equal(t, []string{"c", "a", "b"}, keys)
}

func TestPlanDaysEmptyShapes(t *testing.T) {
	for _, raw := range []string{`{"speiseplanTage": []}`, `{"speiseplanTage": {}}`, `{"speiseplanTage": null}`, `{}`} {
		var content Content
		require.NoError(t, json.Unmarshal([]byte(raw), &content), raw)
		assert.Empty(t, content.SpeiseplanTage, raw)
	}
}

func TestPlanDaysRejectsUnexpectedShapes(t *testing.T) {
	for _, raw := range []string{`{"speiseplanTage": [1]}`, `{"speiseplanTage": 5}`} {
		var content Content
		assert.Error(t, json.Unmarshal([]byte(raw), &content), raw)
	}
}

func TestMenusSortedByNumber(t *testing.T) {
	day := PlanDay{TagesMenues: map[string]DayMenu{
		"x": {MenueNr: 3},
		"y": {MenueNr: 1},
		"z": {MenueNr: 2},
		"a": {MenueNr: 2},
	}}
	menus := day.Menus()
	require.Len(t, menus, 4)
	got := []int{menus[0].MenueNr, menus[1].MenueNr, menus[2].MenueNr, menus[3].MenueNr}
	assert.Equal(t, []int{1, 2, 2, 3}, got)
}

func TestDayMenusShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{name: "object", raw: `{"tagesMenues": {"7": {"menueNr": 2}, "3": {"menueNr": 1}}}`, want: []int{1, 2}},
		{name: "empty array", raw: `{"feiertag": true, "tagesMenues": []}`, want: []int{}},
		{name: "array", raw: `{"tagesMenues": [{"menueNr": 2}, {"menueNr": 1}]}`, want: []int{1, 2}},
		{name: "null", raw: `{"tagesMenues": null}`, want: []int{}},
		{name: "missing", raw: `{"datum": "13.01.2025"}`, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var day PlanDay
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &day))
			got := []int{}
			for _, menu := range day.Menus() {
				got = append(got, menu.MenueNr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDayMenusArrayTiesKeepPosition(t *testing.T) {
	items := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		items = append(items, fmt.Sprintf(`{"menueNr": 1, "bezeichnung": "m%d"}`, i))
	}
	raw := `{"tagesMenues": [` + strings.Join(items, ",") + `]}`
	var day PlanDay
	require.NoError(t, json.Unmarshal([]byte(raw), &day))

	menus := day.Menus()
	require.Len(t, menus, 12)
	assert.Equal(t, "m2", menus[2].Bezeichnung)
	assert.Equal(t, "m10", menus[10].Bezeichnung)
}

func TestDayMenusRejectsScalar(t *testing.T) {
	var day PlanDay
	assert.Error(t, json.Unmarshal([]byte(`{"tagesMenues": 5}`), &day))
}

func TestUnusedVendorFieldsIgnored(t *testing.T) {
	raw := `{"code": "ok", "content": {
		"bestellschlussMsg": {"unexpected": true},
		"splanPdfs": [],
		"speiseplanTage": {"2025-01-13": {"datum": "13.01.2025", "tagesMenues": {"1": {
			"menueId": 123, "splanId": 9, "inhaltsstoffeIds": ["x"], "portionsGroesse": "gross",
			"menueNr": 1, "bezeichnung": "Menü 1", "menueText": "Suppe", "gesperrt": false
		}}}}
	}}`
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Len(t, resp.Content.SpeiseplanTage, 1)
	menus := resp.Content.SpeiseplanTage[0].Menus()
	require.Len(t, menus, 1)
	assert.Equal(t, DayMenu{MenueNr: 1, Bezeichnung: "Menü 1", MenueText: "Suppe"}, menus[0])
}
