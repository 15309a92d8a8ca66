package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"little-lemon/models"
	"little-lemon/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	prefOffers      = "offers"
	prefNewsletters = "news"
)

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64) {
	if b.profiles.OnboardingCompleted(ctx, userID) {
		b.send(chatID, "Welcome!")
		b.sendHome(chatID)
		return
	}
	b.updateSession(chatID, func(s *session) {
		s.step = stepName
		s.pendingName = ""
	})
	b.send(chatID, "Let us get to know you!\nWhat is your first name?")
}

// requireOnboarding runs fn only for users who finished onboarding.
func (b *Bot) requireOnboarding(ctx context.Context, chatID, userID int64, fn func()) {
	if !b.profiles.OnboardingCompleted(ctx, userID) {
		b.send(chatID, "Please send /start to tell us about yourself first.")
		return
	}
	fn()
}

func (b *Bot) handleOnboardingInput(ctx context.Context, chatID, userID int64, text string) {
	var step, name string
	b.updateSession(chatID, func(s *session) {
		step, name = s.step, s.pendingName
	})

	switch step {
	case stepName:
		if !services.ValidName(text) {
			b.send(chatID, "Please use letters and spaces only. What is your first name?")
			return
		}
		b.updateSession(chatID, func(s *session) {
			s.pendingName = text
			s.step = stepEmail
		})
		b.send(chatID, "Thanks, "+text+". What is your email?")
	case stepEmail:
		err := b.profiles.CompleteOnboarding(ctx, userID, name, text)
		if errors.Is(err, services.ErrInvalidEmail) {
			b.send(chatID, "That email does not look right. Please try again.")
			return
		}
		if err != nil {
			b.log.Error("save onboarding", zap.Int64("user_id", userID), zap.Error(err))
			b.send(chatID, "Something went wrong, please try again.")
			return
		}
		b.updateSession(chatID, func(s *session) {
			s.step = stepNone
			s.pendingName = ""
		})
		b.send(chatID, "All set! Type a dish name to search, or pick categories below.")
		b.sendHome(chatID)
	}
}

func profileKeyboard(p *models.Profile) tgbotapi.InlineKeyboardMarkup {
	check := func(on bool, label string) string {
		if on {
			return "☑ " + label
		}
		return "☐ " + label
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(check(p.SpecialOffers, "Special offers"), callbackPreference+":"+prefOffers),
		tgbotapi.NewInlineKeyboardButtonData(check(p.Newsletters, "Newsletters"), callbackPreference+":"+prefNewsletters),
	))
}

func profileText(p *models.Profile) string {
	phone := p.Phone
	if phone == "" {
		phone = "not set (send /phone (+46) 701234567)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Personal information\n\n", services.Initials(p.Name))
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\n", p.Name, p.Email, phone)
	b.WriteString("\nEdit with /name, /email or /phone.")
	if p.AvatarURI == "" {
		b.WriteString("\nSend a photo to set your avatar.")
	}
	return b.String()
}

func (b *Bot) sendProfile(ctx context.Context, chatID, userID int64) {
	p, err := b.profiles.Load(ctx, userID)
	if err != nil {
		b.log.Error("load profile", zap.Int64("user_id", userID), zap.Error(err))
		b.send(chatID, "Could not load your profile.")
		return
	}
	if p.AvatarURI != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(p.AvatarURI))
		photo.Caption = profileText(p)
		photo.ReplyMarkup = profileKeyboard(p)
		if _, err := b.out.Send(photo); err == nil {
			return
		}
	}
	msg := tgbotapi.NewMessage(chatID, profileText(p))
	msg.ReplyMarkup = profileKeyboard(p)
	if _, err := b.out.Send(msg); err != nil {
		b.log.Warn("send profile", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) saveProfile(ctx context.Context, chatID, userID int64, edit func(p *models.Profile)) bool {
	p, err := b.profiles.Load(ctx, userID)
	if err != nil {
		b.log.Error("load profile", zap.Int64("user_id", userID), zap.Error(err))
		b.send(chatID, "Failed to save changes. Please try again.")
		return false
	}
	edit(p)
	if err := b.profiles.Save(ctx, userID, p); err != nil {
		if errors.Is(err, services.ErrInvalidPhone) || errors.Is(err, services.ErrInvalidName) || errors.Is(err, services.ErrInvalidEmail) {
			b.send(chatID, "Not saved: "+err.Error())
			return false
		}
		b.log.Error("save profile", zap.Int64("user_id", userID), zap.Error(err))
		b.send(chatID, "Failed to save changes. Please try again.")
		return false
	}
	return true
}

func (b *Bot) handleName(ctx context.Context, chatID, userID int64, name string) {
	name = strings.TrimSpace(name)
	if b.saveProfile(ctx, chatID, userID, func(p *models.Profile) { p.Name = name }) {
		b.send(chatID, "Profile updated successfully!")
	}
}

func (b *Bot) handleEmail(ctx context.Context, chatID, userID int64, email string) {
	email = strings.TrimSpace(email)
	if b.saveProfile(ctx, chatID, userID, func(p *models.Profile) { p.Email = email }) {
		b.send(chatID, "Profile updated successfully!")
	}
}

func (b *Bot) handlePhone(ctx context.Context, chatID, userID int64, phone string) {
	phone = strings.TrimSpace(phone)
	if b.saveProfile(ctx, chatID, userID, func(p *models.Profile) { p.Phone = phone }) {
		b.send(chatID, "Profile updated successfully!")
	}
}

func (b *Bot) togglePreference(ctx context.Context, chatID, userID int64, pref string) {
	ok := b.saveProfile(ctx, chatID, userID, func(p *models.Profile) {
		switch pref {
		case prefOffers:
			p.SpecialOffers = !p.SpecialOffers
		case prefNewsletters:
			p.Newsletters = !p.Newsletters
		}
	})
	if ok {
		b.sendProfile(ctx, chatID, userID)
	}
}

// handleAvatar keeps the largest size of the photo as the avatar.
func (b *Bot) handleAvatar(ctx context.Context, chatID, userID int64, photo []tgbotapi.PhotoSize) {
	if !b.profiles.OnboardingCompleted(ctx, userID) {
		b.send(chatID, "Please send /start to tell us about yourself first.")
		return
	}
	fileID := photo[len(photo)-1].FileID
	if err := b.profiles.SetAvatar(ctx, userID, fileID); err != nil {
		b.log.Error("set avatar", zap.Int64("user_id", userID), zap.Error(err))
		b.send(chatID, "Could not save your avatar.")
		return
	}
	b.send(chatID, "Avatar updated.")
}

func (b *Bot) handleLogout(ctx context.Context, chatID, userID int64) {
	if err := b.profiles.Logout(ctx, userID); err != nil {
		b.log.Error("logout", zap.Int64("user_id", userID), zap.Error(err))
		b.send(chatID, "Unable to logout. Please try again.")
		return
	}
	b.session(chatID).debounce.Stop()
	b.updateSession(chatID, func(s *session) {
		s.search = ""
		s.categories = services.NewCategorySet()
		s.homeMsgID = 0
	})
	b.handleStart(ctx, chatID, userID)
}
