package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/models"
)

var actionLabels = map[models.Action]string{
	models.ActionAccept:   "📥 Accept",
	models.ActionDecline:  "🙅 Decline",
	models.ActionStart:    "▶ Start",
	models.ActionComplete: "🏁 Complete",
	models.ActionCancel:   "❌ Cancel",
}

var statusLabels = map[models.OrderStatus]string{
	models.StatusPending:    "⏳ waiting for a driver",
	models.StatusAccepted:   "🚖 driver on the way",
	models.StatusInProgress: "🛣 ride in progress",
	models.StatusCompleted:  "✅ completed",
	models.StatusCancelled:  "🚫 cancelled",
}

// callbackData must stay within telegram's 64 byte limit; action names and
// an int64 id always do.
func callbackData(action models.Action, orderID int64) string {
	return string(action) + "_" + strconv.FormatInt(orderID, 10)
}

// parseCallback accepts both the bare "<action>_<id>" form and the
// "\f<unique>|<payload>" form telebot produces for inline buttons.
func parseCallback(data string) (models.Action, int64, error) {
	data = strings.TrimPrefix(data, "\f")
	if i := strings.IndexByte(data, '|'); i >= 0 {
		data = data[:i]
	}

	i := strings.LastIndexByte(data, '_')
	if i <= 0 {
		return "", 0, fmt.Errorf("malformed callback %q", data)
	}
	action, err := models.ParseAction(data[:i])
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(data[i+1:], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("malformed order id in callback %q", data)
	}
	return action, id, nil
}

func formatOrder(o *models.Order) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 <b>Order #%d</b>\n", o.ID)
	fmt.Fprintf(&sb, "📍 %s ➡️ %s\n", html.EscapeString(o.FromAddress), html.EscapeString(o.ToAddress))
	fmt.Fprintf(&sb, "🚕 %s, %s km\n", o.VehicleClass, strconv.FormatFloat(o.DistanceKm, 'f', -1, 64))
	fmt.Fprintf(&sb, "💰 %s %s\n", strconv.FormatFloat(o.Fare, 'f', 2, 64), o.Currency)
	fmt.Fprintf(&sb, "📊 %s", statusLabels[o.Status])
	if o.DriverName != "" {
		fmt.Fprintf(&sb, "\n🧑‍✈️ %s", html.EscapeString(o.DriverName))
	}
	if o.Comment != nil && *o.Comment != "" {
		fmt.Fprintf(&sb, "\n💬 %s", html.EscapeString(*o.Comment))
	}
	return sb.String()
}

func alertText(err error) string {
	switch {
	case errors.Is(err, errs.ErrConflict):
		return "This order was already taken by another driver."
	case errors.Is(err, errs.ErrInvalidTransition):
		return "This order can no longer be changed that way."
	case errors.Is(err, errs.ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, errs.ErrNotFound):
		return "Order not found."
	case errors.Is(err, errs.ErrStorage):
		return "Service is busy, try again."
	}
	return "Something went wrong."
}
