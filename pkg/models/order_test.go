package models_test

import (
	"testing"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVehicleClass(t *testing.T) {
	for _, s := range []string{"economy", "comfort", "business"} {
		c, err := models.ParseVehicleClass(s)
		require.NoError(t, err)
		assert.Equal(t, models.VehicleClass(s), c)
	}

	_, err := models.ParseVehicleClass("limo")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "limo")
}

func TestParseOrderStatus(t *testing.T) {
	s, err := models.ParseOrderStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, s)

	_, err = models.ParseOrderStatus("declined")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestParseAction(t *testing.T) {
	a, err := models.ParseAction("accept")
	require.NoError(t, err)
	assert.Equal(t, models.ActionAccept, a)

	_, err = models.ParseAction("reassign")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, models.StatusPending.IsTerminal())
	assert.False(t, models.StatusAccepted.IsTerminal())
	assert.False(t, models.StatusInProgress.IsTerminal())
	assert.True(t, models.StatusCompleted.IsTerminal())
	assert.True(t, models.StatusCancelled.IsTerminal())
}

func TestOrder_IsBoundTo(t *testing.T) {
	driver := int64(3)
	o := &models.Order{}
	assert.False(t, o.IsBoundTo(3))

	o.DriverID = &driver
	assert.True(t, o.IsBoundTo(3))
	assert.False(t, o.IsBoundTo(4))
}
