package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Response is the vendor envelope for a meal plan range.
type Response struct {
	Content Content `json:"content"`
}

// Content holds only the fields the import reads, so drift in the rest of
// the vendor document does not reject a batch.
type Content struct {
	SpeiseplanTage PlanDays `json:"speiseplanTage"`
}

// PlanDay is one dated entry of speiseplanTage. Key holds the object key.
type PlanDay struct {
	Key         string   `json:"-"`
	Datum       string   `json:"datum"`
	Feiertag    bool     `json:"feiertag"`
	TagesMenues DayMenus `json:"tagesMenues"`
}

type DayMenu struct {
	MenueNr     int    `json:"menueNr"`
	Bezeichnung string `json:"bezeichnung"`
	MenueText   string `json:"menueText"`
	Gesperrt    bool   `json:"gesperrt"`
}

// DayMenus is keyed like the vendor object. An array (empty or not) is
// accepted too, keyed by position.
type DayMenus map[string]DayMenu

func (m *DayMenus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}

	if data[0] == '[' {
		var list []DayMenu
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("tagesMenues: %w", err)
		}
		menus := make(DayMenus, len(list))
		for i, menu := range list {
			menus[strconv.Itoa(i)] = menu
		}
		*m = menus
		return nil
	}

	var menus map[string]DayMenu
	if err := json.Unmarshal(data, &menus); err != nil {
		return fmt.Errorf("tagesMenues: %w", err)
	}
	*m = menus
	return nil
}

// Menus returns the day's menus ordered by menueNr, ties broken by key.
func (d PlanDay) Menus() []DayMenu {
	keys := make([]string, 0, len(d.TagesMenues))
	for key := range d.TagesMenues {
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := d.TagesMenues[keys[i]], d.TagesMenues[keys[j]]
		if a.MenueNr != b.MenueNr {
			return a.MenueNr < b.MenueNr
		}
		return keyLess(keys[i], keys[j])
	})

	menus := make([]DayMenu, 0, len(keys))
	for _, key := range keys {
		menus = append(menus, d.TagesMenues[key])
	}
	return menus
}

// keyLess orders integer keys numerically and everything else as strings.
func keyLess(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return x < y
	}
	return a < b
}

// PlanDays keeps speiseplanTage in document order.
type PlanDays []PlanDay

func (d *PlanDays) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch tok {
	case nil:
		*d = nil
		return nil
	case json.Delim('['):
		// the vendor encodes an empty map as []
		if dec.More() {
			return fmt.Errorf("speiseplanTage: expected object, got non-empty array")
		}
		*d = PlanDays{}
		return nil
	case json.Delim('{'):
	default:
		return fmt.Errorf("speiseplanTage: unexpected token %v", tok)
	}

	days := PlanDays{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("speiseplanTage: unexpected key %v", keyTok)
		}
		var day PlanDay
		if err := dec.Decode(&day); err != nil {
			return fmt.Errorf("speiseplanTage[%s]: %w", key, err)
		}
		day.Key = key
		days = append(days, day)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = days
	return nil
}
