package services

import (
	"strings"
	"testing"

	"little-lemon/models"

	"github.com/stretchr/testify/assert"
)

const testImageBase = "https://example.com/images/"

func TestMenuCard(t *testing.T) {
	card := MenuCard(models.MenuItem{
		Name: "Greek Salad", Description: "Crispy lettuce", Price: 12.99, Image: "greekSalad.jpg",
	}, testImageBase)
	assert.Equal(t, "Greek Salad — $12.99\nCrispy lettuce\nhttps://example.com/images/greekSalad.jpg?raw=true", card)
}

func TestMenuCard_Defaults(t *testing.T) {
	card := MenuCard(models.MenuItem{}, testImageBase)
	assert.Equal(t, "Unnamed Item — $0.00\nNo description available.", card)
}

func TestMenuListText(t *testing.T) {
	assert.Equal(t, "No dishes match.", MenuListText(nil, testImageBase))

	items := []models.MenuItem{{Name: "A", Price: 1}, {Name: "B", Price: 2}}
	assert.Equal(t, "A — $1.00\nNo description available.\n\nB — $2.00\nNo description available.", MenuListText(items, ""))
}

func TestMenuListText_Truncates(t *testing.T) {
	long := strings.Repeat("x", 1000)
	items := make([]models.MenuItem, 10)
	for i := range items {
		items[i] = models.MenuItem{Name: "Dish", Description: long}
	}
	text := MenuListText(items, "")
	assert.LessOrEqual(t, len(text), TelegramMessageLimit)
	assert.Contains(t, text, "more")
}

func TestMenuListTextWithin(t *testing.T) {
	items := []models.MenuItem{
		{Name: "A", Description: strings.Repeat("a", 200)},
		{Name: "B", Description: strings.Repeat("b", 200)},
		{Name: "C", Description: strings.Repeat("c", 200)},
	}
	text := MenuListTextWithin(items, "", 500)
	assert.LessOrEqual(t, len(text), 500)
	assert.True(t, strings.HasPrefix(text, "A — "))
	assert.True(t, strings.HasSuffix(text, "…and 1 more"))
}
