package bot

import (
	"context"
	"strings"
	"sync"

	"little-lemon/config"
	"little-lemon/models"
	"little-lemon/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	stepNone  = ""
	stepName  = "name"
	stepEmail = "email"
)

// session is the per-chat screen state.
type session struct {
	step        string
	pendingName string

	search     string
	categories services.CategorySet
	debounce   *services.Debouncer
	homeMsgID  int // home screen message edited in place
}

// sender is the outgoing half of the Bot API.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	out      sender
	cfg      *config.Config
	log      *zap.Logger
	loader   *services.MenuLoader
	profiles *services.ProfileService

	menuMu sync.RWMutex
	menu   []models.MenuItem

	sessionsMu sync.Mutex
	sessions   map[int64]*session
}

func New(cfg *config.Config, loader *services.MenuLoader, profiles *services.ProfileService, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		api:      api,
		out:      api,
		cfg:      cfg,
		log:      log.Named("bot"),
		loader:   loader,
		profiles: profiles,
		sessions: make(map[int64]*session),
	}, nil
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "start", Description: "Home"},
			{Command: "menu", Description: "Browse the menu"},
			{Command: "clear", Description: "Clear search and categories"},
			{Command: "profile", Description: "Your profile"},
			{Command: "name", Description: "Change your first name"},
			{Command: "email", Description: "Change your email"},
			{Command: "phone", Description: "Set your phone number"},
			{Command: "refresh", Description: "Refetch the menu"},
			{Command: "logout", Description: "Log out"},
		},
	}
	_, err := b.out.Request(cfg)
	return err
}

// Start loads the menu once and serves updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	if err := b.setBotCommands(); err != nil {
		b.log.Warn("set bot commands", zap.Error(err))
	}
	b.setMenu(b.loader.Load(ctx))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.log.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.stopSessions()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if len(msg.Photo) > 0 {
		b.handleAvatar(ctx, chatID, userID, msg.Photo)
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, chatID, userID)
		case "menu":
			b.requireOnboarding(ctx, chatID, userID, func() { b.sendHome(chatID) })
		case "clear":
			b.requireOnboarding(ctx, chatID, userID, func() { b.handleClear(chatID) })
		case "profile":
			b.requireOnboarding(ctx, chatID, userID, func() { b.sendProfile(ctx, chatID, userID) })
		case "name":
			b.requireOnboarding(ctx, chatID, userID, func() { b.handleName(ctx, chatID, userID, msg.CommandArguments()) })
		case "email":
			b.requireOnboarding(ctx, chatID, userID, func() { b.handleEmail(ctx, chatID, userID, msg.CommandArguments()) })
		case "phone":
			b.requireOnboarding(ctx, chatID, userID, func() { b.handlePhone(ctx, chatID, userID, msg.CommandArguments()) })
		case "logout":
			b.handleLogout(ctx, chatID, userID)
		case "refresh":
			b.requireOnboarding(ctx, chatID, userID, func() { b.handleRefresh(ctx, chatID) })
		default:
			b.send(chatID, "Unknown command.")
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	var step string
	b.updateSession(chatID, func(s *session) { step = s.step })
	if step != stepNone {
		b.handleOnboardingInput(ctx, chatID, userID, text)
		return
	}
	b.requireOnboarding(ctx, chatID, userID, func() { b.handleSearch(chatID, text) })
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	kind, arg, ok := parseCallback(cq.Data)
	if !ok {
		b.answer(cq.ID, "")
		return
	}
	switch kind {
	case callbackCategory:
		selected := b.toggleCategory(chatID, arg)
		if selected {
			b.answer(cq.ID, categoryName(arg)+" on")
		} else {
			b.answer(cq.ID, categoryName(arg)+" off")
		}
		b.renderHome(chatID)
	case callbackPreference:
		b.answer(cq.ID, "")
		b.togglePreference(ctx, chatID, cq.From.ID, arg)
	}
}

func (b *Bot) session(chatID int64) *session {
	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{
			categories: services.NewCategorySet(),
			debounce:   services.NewDebouncer(b.cfg.Menu.SearchDebounce),
		}
		b.sessions[chatID] = s
	}
	return s
}

// updateSession applies fn to the chat's session under the sessions lock.
func (b *Bot) updateSession(chatID int64, fn func(s *session)) {
	s := b.session(chatID)
	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	fn(s)
}

func (b *Bot) stopSessions() {
	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	for _, s := range b.sessions {
		s.debounce.Stop()
	}
}

func (b *Bot) setMenu(items []models.MenuItem) {
	b.menuMu.Lock()
	b.menu = items
	b.menuMu.Unlock()
}

func (b *Bot) currentMenu() []models.MenuItem {
	b.menuMu.RLock()
	defer b.menuMu.RUnlock()
	return b.menu
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.out.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// answer sends a short toast for the callback (no new message).
func (b *Bot) answer(callbackID, text string) {
	if _, err := b.out.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug("answer callback", zap.Error(err))
	}
}
