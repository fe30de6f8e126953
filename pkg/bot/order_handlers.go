package bot

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v3"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/service"
)

func (b *Bot) handleMyOrders(c tele.Context) error {
	ctx := context.Background()
	actor, err := b.actor(ctx, c)
	if err != nil {
		return b.sendError(c, err)
	}

	var orders []*models.Order
	switch {
	case actor.IsClient():
		orders, err = b.Svc.Query().ForClient(ctx, actor.ID)
	case actor.IsDriver():
		orders, err = b.Svc.Query().ForDriver(ctx, actor.ID, nil)
	default:
		return c.Send(messages["no_orders"])
	}
	if err != nil {
		return b.sendError(c, err)
	}

	if len(orders) == 0 {
		return c.Send(messages["no_orders"])
	}
	return b.sendOrders(c, actor, orders)
}

func (b *Bot) handleAvailableOrders(c tele.Context) error {
	ctx := context.Background()
	actor, err := b.actor(ctx, c)
	if err != nil {
		return b.sendError(c, err)
	}
	if actor.IsClient() {
		return c.Send(messages["no_available"])
	}

	orders, err := b.Svc.Query().AvailableForDrivers(ctx)
	if err != nil {
		return b.sendError(c, err)
	}
	if len(orders) == 0 {
		return c.Send(messages["no_available"])
	}
	return b.sendOrders(c, actor, orders)
}

func (b *Bot) sendOrders(c tele.Context, actor models.Actor, orders []*models.Order) error {
	for _, o := range orders {
		if err := c.Send(formatOrder(o), orderMenu(o, actor), tele.ModeHTML); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleCallback(c tele.Context) error {
	action, orderID, err := parseCallback(c.Callback().Data)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown button", ShowAlert: true})
	}

	ctx := context.Background()
	actor, err := b.actor(ctx, c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: alertText(err), ShowAlert: true})
	}

	order, err := b.Svc.Order().Transition(ctx, actor, orderID, action)
	if err != nil {
		if errs.IsRetryable(err) {
			b.Log.Error("transition failed",
				logger.Int64("order_id", orderID),
				logger.String("action", string(action)),
				logger.Error(err),
			)
		}
		return c.Respond(&tele.CallbackResponse{Text: alertText(err), ShowAlert: true})
	}

	if err := c.Edit(formatOrder(order), orderMenu(order, actor), tele.ModeHTML); err != nil {
		b.Log.Warning("failed to refresh order message", logger.Int64("order_id", orderID), logger.Error(err))
	}
	return c.Respond(&tele.CallbackResponse{Text: "✅ " + string(order.Status)})
}

func (b *Bot) sendError(c tele.Context, err error) error {
	if errors.Is(err, errs.ErrForbidden) {
		return c.Send(messages["blocked"])
	}
	b.Log.Error("bot request failed", logger.Int64("tele_id", c.Sender().ID), logger.Error(err))
	return c.Send(messages["error"])
}

func orderMenu(o *models.Order, actor models.Actor) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	var btns []tele.Btn
	for _, action := range service.Actions(o, actor) {
		btns = append(btns, menu.Data(actionLabels[action], callbackData(action, o.ID)))
	}
	if len(btns) > 0 {
		menu.Inline(menu.Row(btns...))
	}
	return menu
}
