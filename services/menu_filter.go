package services

import (
	"sort"
	"strings"

	"little-lemon/models"
)

// CategorySet is the set of category keys the user has selected.
// An empty set means every category passes.
type CategorySet map[string]struct{}

func NewCategorySet(keys ...string) CategorySet {
	s := make(CategorySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s CategorySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Toggle selects key if absent and deselects it if present. It reports
// whether key is selected afterwards.
func (s CategorySet) Toggle(key string) bool {
	if s.Has(key) {
		delete(s, key)
		return false
	}
	s[key] = struct{}{}
	return true
}

// Keys returns the selected keys sorted.
func (s CategorySet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilterMenu keeps items whose name contains search (case-insensitive) and
// whose category is selected. Selected categories are ORed. Order is kept.
func FilterMenu(items []models.MenuItem, search string, selected CategorySet) []models.MenuItem {
	needle := strings.ToLower(search)
	out := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		if !strings.Contains(strings.ToLower(it.Name), needle) {
			continue
		}
		if len(selected) > 0 && !selected.Has(it.Category) {
			continue
		}
		out = append(out, it)
	}
	return out
}
