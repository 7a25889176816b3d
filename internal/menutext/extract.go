package menutext

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	allergenCodes   = regexp.MustCompile(`\(([A-N](?:,[A-N])*)\)`)
	supplementCodes = regexp.MustCompile(`\(((?:[1-9]|1[0-5])(?:,(?:[1-9]|1[0-5]))*)\)`)
)

// CodeSet is a set of known reference codes.
type CodeSet map[string]struct{}

func NewCodeSet(codes ...string) CodeSet {
	set := make(CodeSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

func (s CodeSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// AllergenIDs returns the known allergen codes referenced in text, sorted lexicographically.
func AllergenIDs(text string, known CodeSet) []string {
	ids := collect(allergenCodes, text, known)
	sort.Strings(ids)
	return ids
}

// SupplementIDs returns the known supplement codes referenced in text, sorted numerically.
func SupplementIDs(text string, known CodeSet) []string {
	ids := collect(supplementCodes, text, known)
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	return ids
}

func collect(pattern *regexp.Regexp, text string, known CodeSet) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		for _, id := range strings.Split(match[1], ",") {
			if id == "" || !known.Has(id) {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
