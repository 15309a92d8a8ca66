package bot

import (
	"context"
	"fmt"
	"strings"

	"little-lemon/models"
	"little-lemon/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	callbackCategory   = "cat"
	callbackPreference = "pref"
)

func parseCallback(data string) (kind, arg string, ok bool) {
	kind, arg, ok = strings.Cut(data, ":")
	if !ok || arg == "" {
		return "", "", false
	}
	switch kind {
	case callbackCategory, callbackPreference:
		return kind, arg, true
	}
	return "", "", false
}

func categoryName(key string) string {
	for _, c := range models.Categories {
		if c.Key == key {
			return c.Name
		}
	}
	return key
}

// categoryKeyboard has one toggle per category; selected ones are ticked.
func categoryKeyboard(selected services.CategorySet) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(models.Categories))
	for _, c := range models.Categories {
		label := c.Name
		if selected.Has(c.Key) {
			label = "✓ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, callbackCategory+":"+c.Key))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// maxSearchShown caps how much of the query the home header echoes back.
const maxSearchShown = 64

func shortSearch(search string) string {
	r := []rune(search)
	if len(r) <= maxSearchShown {
		return search
	}
	return string(r[:maxSearchShown]) + "…"
}

// homeText renders the home screen within one Telegram message.
func homeText(items []models.MenuItem, search string, selected services.CategorySet, imageBaseURL string) string {
	var b strings.Builder
	b.WriteString("Little Lemon\n")
	if search != "" {
		fmt.Fprintf(&b, "Search: %q\n", shortSearch(search))
	}
	if len(selected) > 0 {
		names := make([]string, 0, len(selected))
		for _, k := range selected.Keys() {
			names = append(names, categoryName(k))
		}
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(names, ", "))
	}
	b.WriteString("\n")
	filtered := services.FilterMenu(items, search, selected)
	b.WriteString(services.MenuListTextWithin(filtered, imageBaseURL, services.TelegramMessageLimit-b.Len()))
	return b.String()
}

func (b *Bot) toggleCategory(chatID int64, key string) bool {
	var selected bool
	b.updateSession(chatID, func(s *session) {
		selected = s.categories.Toggle(key)
	})
	return selected
}

func (b *Bot) handleSearch(chatID int64, text string) {
	s := b.session(chatID)
	s.debounce.Trigger(func() {
		b.updateSession(chatID, func(s *session) { s.search = text })
		b.renderHome(chatID)
	})
}

func (b *Bot) handleClear(chatID int64) {
	b.session(chatID).debounce.Stop()
	b.updateSession(chatID, func(s *session) {
		s.search = ""
		s.categories = services.NewCategorySet()
	})
	b.renderHome(chatID)
}

// sendHome posts a fresh home screen message.
func (b *Bot) sendHome(chatID int64) {
	b.updateSession(chatID, func(s *session) { s.homeMsgID = 0 })
	b.renderHome(chatID)
}

// renderHome edits the chat's home message in place, or sends a new one
// when there is none (or it was deleted).
func (b *Bot) renderHome(chatID int64) {
	var (
		search   string
		selected services.CategorySet
		msgID    int
	)
	b.updateSession(chatID, func(s *session) {
		search = s.search
		selected = services.NewCategorySet(s.categories.Keys()...)
		msgID = s.homeMsgID
	})
	text := homeText(b.currentMenu(), search, selected, b.cfg.Menu.ImageBaseURL)
	kb := categoryKeyboard(selected)

	if msgID != 0 {
		_, err := b.out.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb))
		if err == nil {
			return
		}
		errStr := err.Error()
		if strings.Contains(errStr, "not modified") {
			return
		}
		if !strings.Contains(errStr, "not found") {
			b.log.Warn("edit home", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	sent, err := b.out.Send(msg)
	if err != nil {
		b.log.Warn("send home", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	b.updateSession(chatID, func(s *session) { s.homeMsgID = sent.MessageID })
}

func (b *Bot) handleRefresh(ctx context.Context, chatID int64) {
	items, err := b.loader.Refresh(ctx)
	if err != nil {
		b.log.Error("refresh menu", zap.Error(err))
		b.send(chatID, "Could not refresh the menu right now.")
		return
	}
	b.setMenu(items)
	b.send(chatID, fmt.Sprintf("Menu refreshed: %d dishes.", len(items)))
}
