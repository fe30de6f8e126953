package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"taxiorders/config"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/service"
)

const (
	btnMyOrders        = "📋 My orders"
	btnAvailableOrders = "📦 Available orders"
)

var messages = map[string]string{
	"blocked":      "🚫 Your account is blocked.",
	"menu_client":  "👤 Client menu. New orders are placed in the app.",
	"menu_driver":  "🚖 Driver menu:",
	"menu_admin":   "🛠 Admin menu:",
	"no_orders":    "📭 No orders yet.",
	"no_available": "📭 No available orders right now.",
	"error":        "❌ Something went wrong, try again later.",
}

// Bot is a thin presentation layer: every button ends up in the order
// engine, and every engine error is shown back to the user as an alert.
type Bot struct {
	Bot *tele.Bot
	Log logger.ILogger
	Cfg *config.Config
	Svc service.IServiceManager
}

func New(cfg *config.Config, svc service.IServiceManager, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("telegram handler failed", logger.Error(err))
		},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		Bot: b,
		Log: log.With(logger.String("component", "bot")),
		Cfg: cfg,
		Svc: svc,
	}
	bot.registerHandlers()
	return bot, nil
}

func (b *Bot) Start() {
	b.Log.Info("telegram bot started", logger.String("username", b.Bot.Me.Username))
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.handleStart)
	b.Bot.Handle(btnMyOrders, b.handleMyOrders)
	b.Bot.Handle(btnAvailableOrders, b.handleAvailableOrders)
	b.Bot.Handle(tele.OnCallback, b.handleCallback)
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := context.Background()

	user, err := b.Svc.User().ResolveTelegram(ctx, c.Sender().ID, senderName(c.Sender()))
	if err != nil {
		b.Log.Error("failed to register telegram user", logger.Int64("tele_id", c.Sender().ID), logger.Error(err))
		return c.Send(messages["error"])
	}

	if b.Cfg.AdminID != 0 && c.Sender().ID == b.Cfg.AdminID && user.Role != models.RoleAdmin {
		if err := b.Svc.User().Promote(ctx, user.ID, models.RoleAdmin); err != nil {
			b.Log.Error("failed to promote admin", logger.Int64("user_id", user.ID), logger.Error(err))
			return c.Send(messages["error"])
		}
	}

	actor, err := b.Svc.User().Resolve(ctx, user.ID)
	if err != nil {
		return b.sendError(c, err)
	}
	return b.showMenu(c, actor)
}

func (b *Bot) showMenu(c tele.Context, actor models.Actor) error {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	switch actor.Role {
	case models.RoleAdmin:
		menu.Reply(menu.Row(menu.Text(btnAvailableOrders)))
		return c.Send(messages["menu_admin"], menu)
	case models.RoleDriver:
		menu.Reply(menu.Row(menu.Text(btnAvailableOrders)), menu.Row(menu.Text(btnMyOrders)))
		return c.Send(messages["menu_driver"], menu)
	}

	menu.Reply(menu.Row(menu.Text(btnMyOrders)))
	return c.Send(messages["menu_client"], menu)
}

// actor maps the telegram sender to a core actor. Unregistered senders are
// registered on the fly, the same way /start does it.
func (b *Bot) actor(ctx context.Context, c tele.Context) (models.Actor, error) {
	user, err := b.Svc.User().ResolveTelegram(ctx, c.Sender().ID, senderName(c.Sender()))
	if err != nil {
		return models.Actor{}, err
	}
	return b.Svc.User().Resolve(ctx, user.ID)
}

func senderName(u *tele.User) string {
	name := strings.TrimSpace(fmt.Sprintf("%s %s", u.FirstName, u.LastName))
	if name == "" {
		name = u.Username
	}
	return name
}
