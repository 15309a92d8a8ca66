package services

import (
	"testing"

	"little-lemon/models"

	"github.com/stretchr/testify/assert"
)

func testMenu() []models.MenuItem {
	return []models.MenuItem{
		{ID: 1, Name: "Pasta Bake", Category: models.CategoryMains},
		{ID: 2, Name: "Greek Salad", Category: models.CategoryStarters},
		{ID: 3, Name: "PASTA Primavera", Category: models.CategoryMains},
		{ID: 4, Name: "Lemon Dessert", Category: models.CategoryDesserts},
		{ID: 5, Name: "Bruschetta", Category: models.CategoryStarters},
	}
}

func names(items []models.MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestFilterMenu(t *testing.T) {
	items := testMenu()
	tests := []struct {
		name     string
		search   string
		selected CategorySet
		want     []string
	}{
		{"no filter", "", NewCategorySet(), []string{"Pasta Bake", "Greek Salad", "PASTA Primavera", "Lemon Dessert", "Bruschetta"}},
		{"nil set", "", nil, []string{"Pasta Bake", "Greek Salad", "PASTA Primavera", "Lemon Dessert", "Bruschetta"}},
		{"search case-insensitive", "pasta", nil, []string{"Pasta Bake", "PASTA Primavera"}},
		{"search upper", "SALAD", nil, []string{"Greek Salad"}},
		{"search no match", "pizza", nil, []string{}},
		{"one category", "", NewCategorySet(models.CategoryDesserts), []string{"Lemon Dessert"}},
		{"two categories OR", "", NewCategorySet(models.CategoryStarters, models.CategoryDesserts), []string{"Greek Salad", "Lemon Dessert", "Bruschetta"}},
		{"search and category", "a", NewCategorySet(models.CategoryStarters), []string{"Greek Salad", "Bruschetta"}},
		{"unknown category", "", NewCategorySet("drinks"), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterMenu(items, tt.search, tt.selected)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilterMenu_IdentityKeepsItems(t *testing.T) {
	items := testMenu()
	assert.Equal(t, items, FilterMenu(items, "", NewCategorySet()))
}

func TestFilterMenu_DoesNotModifyInput(t *testing.T) {
	items := testMenu()
	_ = FilterMenu(items, "pasta", NewCategorySet(models.CategoryMains))
	assert.Equal(t, testMenu(), items)
}

func TestCategorySet_Toggle(t *testing.T) {
	items := testMenu()
	s := NewCategorySet()

	assert.True(t, s.Toggle(models.CategoryDesserts))
	assert.Equal(t, []string{"Lemon Dessert"}, names(FilterMenu(items, "", s)))

	assert.False(t, s.Toggle(models.CategoryDesserts))
	assert.Empty(t, s)
	assert.Equal(t, items, FilterMenu(items, "", s))
}

func TestCategorySet_Keys(t *testing.T) {
	s := NewCategorySet(models.CategoryStarters, models.CategoryDesserts, models.CategoryMains)
	assert.Equal(t, []string{"desserts", "mains", "starters"}, s.Keys())
}
