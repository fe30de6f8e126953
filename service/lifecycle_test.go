package service

import (
	"testing"

	"taxiorders/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestActions(t *testing.T) {
	driverID := int64(10)
	client := models.Actor{ID: 1, Role: models.RoleClient}
	bound := models.Actor{ID: driverID, Role: models.RoleDriver}
	other := models.Actor{ID: 11, Role: models.RoleDriver}

	pending := &models.Order{ClientID: 1, Status: models.StatusPending}
	accepted := &models.Order{ClientID: 1, Status: models.StatusAccepted, DriverID: &driverID}
	inProgress := &models.Order{ClientID: 1, Status: models.StatusInProgress, DriverID: &driverID}
	completed := &models.Order{ClientID: 1, Status: models.StatusCompleted, DriverID: &driverID}

	assert.Equal(t, []models.Action{models.ActionCancel}, Actions(pending, client))
	assert.Equal(t, []models.Action{models.ActionAccept, models.ActionDecline, models.ActionCancel}, Actions(pending, other))
	assert.Equal(t, []models.Action{models.ActionStart, models.ActionComplete, models.ActionCancel}, Actions(accepted, bound))
	assert.Equal(t, []models.Action{models.ActionCancel}, Actions(accepted, client))
	assert.Empty(t, Actions(accepted, other))
	assert.Equal(t, []models.Action{models.ActionComplete, models.ActionCancel}, Actions(inProgress, bound))
	assert.Empty(t, Actions(inProgress, client))
	assert.Empty(t, Actions(completed, bound))
}

func TestLifecycle_NeverReturnsToPending(t *testing.T) {
	for from, actions := range lifecycle {
		for action, r := range actions {
			assert.NotEqual(t, models.StatusPending, r.to, "%s --%s-->", from, action)
		}
	}
}

func TestLifecycle_TerminalStatesHaveNoExits(t *testing.T) {
	assert.Empty(t, lifecycle[models.StatusCompleted])
	assert.Empty(t, lifecycle[models.StatusCancelled])
}

func TestLifecycle_OnlyAcceptBinds(t *testing.T) {
	for from, actions := range lifecycle {
		for action, r := range actions {
			assert.Equal(t, from == models.StatusPending && action == models.ActionAccept, r.bind, "%s/%s", from, action)
		}
	}
}
