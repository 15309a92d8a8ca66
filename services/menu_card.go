package services

import (
	"fmt"
	"strings"

	"little-lemon/models"
)

const (
	defaultItemName        = "Unnamed Item"
	defaultItemDescription = "No description available."
)

// TelegramMessageLimit is the longest text a single bot message may carry.
const TelegramMessageLimit = 4096

// FormatPrice renders a price the way the menu list shows it.
func FormatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

// MenuImageURL links an item's image file under base.
func MenuImageURL(base, image string) string {
	if image == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + image + "?raw=true"
}

// MenuCard renders one item, substituting display defaults for missing fields.
func MenuCard(it models.MenuItem, imageBaseURL string) string {
	name := it.Name
	if name == "" {
		name = defaultItemName
	}
	desc := it.Description
	if desc == "" {
		desc = defaultItemDescription
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s\n%s", name, FormatPrice(it.Price), desc)
	if u := MenuImageURL(imageBaseURL, it.Image); u != "" {
		fmt.Fprintf(&b, "\n%s", u)
	}
	return b.String()
}

// MenuListText joins the cards of items, stopping before the Telegram
// message limit and noting how many were left out.
func MenuListText(items []models.MenuItem, imageBaseURL string) string {
	return MenuListTextWithin(items, imageBaseURL, TelegramMessageLimit)
}

// MenuListTextWithin is MenuListText for a message that has only limit
// bytes left for the list.
func MenuListTextWithin(items []models.MenuItem, imageBaseURL string, limit int) string {
	if len(items) == 0 {
		return "No dishes match."
	}
	var b strings.Builder
	for i, it := range items {
		card := MenuCard(it, imageBaseURL)
		more := fmt.Sprintf("\n\n…and %d more", len(items)-i)
		if b.Len()+len(card)+2+len(more) > limit {
			b.WriteString(more)
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(card)
	}
	return b.String()
}
