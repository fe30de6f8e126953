package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/models"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		action models.Action
		id     int64
		err    bool
	}{
		{name: "bare", data: "accept_12", action: models.ActionAccept, id: 12},
		{name: "telebot unique", data: "\fcomplete_7", action: models.ActionComplete, id: 7},
		{name: "telebot unique with payload", data: "\fcancel_3|x", action: models.ActionCancel, id: 3},
		{name: "unknown action", data: "take_3", err: true},
		{name: "missing id", data: "accept_", err: true},
		{name: "no separator", data: "accept", err: true},
		{name: "negative id", data: "start_-1", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, id, err := parseCallback(tt.data)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestCallbackDataRoundTrip(t *testing.T) {
	action, id, err := parseCallback(callbackData(models.ActionDecline, 99))
	require.NoError(t, err)
	assert.Equal(t, models.ActionDecline, action)
	assert.Equal(t, int64(99), id)
}

func TestFormatOrder(t *testing.T) {
	comment := "<b>gate 4</b>"
	o := &models.Order{
		ID:           5,
		FromAddress:  "Lenina 1",
		ToAddress:    "Airport",
		VehicleClass: models.ClassBusiness,
		DistanceKm:   2.5,
		Fare:         6,
		Currency:     "RUB",
		Status:       models.StatusAccepted,
		DriverName:   "Dmitry",
		Comment:      &comment,
	}

	txt := formatOrder(o)

	assert.Contains(t, txt, "Order #5")
	assert.Contains(t, txt, "Lenina 1 ➡️ Airport")
	assert.Contains(t, txt, "business, 2.5 km")
	assert.Contains(t, txt, "6.00 RUB")
	assert.Contains(t, txt, "driver on the way")
	assert.Contains(t, txt, "Dmitry")
	assert.Contains(t, txt, "&lt;b&gt;gate 4&lt;/b&gt;")
}

func TestOrderMenu(t *testing.T) {
	driverID := int64(2)
	pending := &models.Order{ID: 1, ClientID: 1, Status: models.StatusPending}
	accepted := &models.Order{ID: 1, ClientID: 1, Status: models.StatusAccepted, DriverID: &driverID}

	t.Run("driver sees accept and decline on pending", func(t *testing.T) {
		menu := orderMenu(pending, models.Actor{ID: 2, Role: models.RoleDriver})
		require.Len(t, menu.InlineKeyboard, 1)
		var labels []string
		for _, b := range menu.InlineKeyboard[0] {
			labels = append(labels, b.Text)
		}
		assert.Contains(t, labels, actionLabels[models.ActionAccept])
		assert.Contains(t, labels, actionLabels[models.ActionDecline])
	})

	t.Run("foreign driver gets no buttons on accepted order", func(t *testing.T) {
		menu := orderMenu(accepted, models.Actor{ID: 3, Role: models.RoleDriver})
		assert.Empty(t, menu.InlineKeyboard)
	})
}

func TestAlertText(t *testing.T) {
	assert.Contains(t, alertText(errs.NewConflictError(1)), "already taken")
	assert.Contains(t, alertText(errs.NewInvalidTransitionError(1, "completed", "cancel")), "no longer")
	assert.Equal(t, "Something went wrong.", alertText(assert.AnError))
}
