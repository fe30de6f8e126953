package service

import "taxiorders/pkg/models"

// rule is one row of the order state machine: from a status, an action
// moves the order to `to` if `allowed` accepts the actor.
type rule struct {
	to      models.OrderStatus
	allowed func(o *models.Order, a models.Actor) bool
	denied  string
	bind    bool
}

var lifecycle = map[models.OrderStatus]map[models.Action]rule{
	models.StatusPending: {
		models.ActionAccept: {
			to:      models.StatusAccepted,
			allowed: anyDriver,
			denied:  "only drivers accept orders",
			bind:    true,
		},
		models.ActionDecline: {
			to:      models.StatusCancelled,
			allowed: anyDriver,
			denied:  "only drivers decline orders",
		},
		models.ActionCancel: {
			to:      models.StatusCancelled,
			allowed: either(owningClient, anyDriver, admin),
			denied:  "only the owning client or a driver may cancel a pending order",
		},
	},
	models.StatusAccepted: {
		models.ActionStart: {
			to:      models.StatusInProgress,
			allowed: boundDriver,
			denied:  "only the bound driver starts the ride",
		},
		models.ActionComplete: {
			to:      models.StatusCompleted,
			allowed: boundDriver,
			denied:  "only the bound driver completes the ride",
		},
		models.ActionCancel: {
			to:      models.StatusCancelled,
			allowed: either(boundDriver, owningClient, admin),
			denied:  "only the bound driver or the owning client may cancel",
		},
	},
	models.StatusInProgress: {
		models.ActionComplete: {
			to:      models.StatusCompleted,
			allowed: boundDriver,
			denied:  "only the bound driver completes the ride",
		},
		models.ActionCancel: {
			to:      models.StatusCancelled,
			allowed: either(boundDriver, admin),
			denied:  "only the bound driver may cancel a ride in progress",
		},
	},
}

func lookupRule(from models.OrderStatus, action models.Action) (rule, bool) {
	r, ok := lifecycle[from][action]
	return r, ok
}

// Actions lists what actor may do with o right now. Presentation layers use
// it to decide which buttons to show.
func Actions(o *models.Order, a models.Actor) []models.Action {
	var out []models.Action
	for _, action := range []models.Action{
		models.ActionAccept, models.ActionDecline, models.ActionStart, models.ActionComplete, models.ActionCancel,
	} {
		if r, ok := lookupRule(o.Status, action); ok && r.allowed(o, a) {
			out = append(out, action)
		}
	}
	return out
}

func anyDriver(_ *models.Order, a models.Actor) bool {
	return a.IsDriver()
}

func boundDriver(o *models.Order, a models.Actor) bool {
	return a.IsDriver() && o.IsBoundTo(a.ID)
}

func owningClient(o *models.Order, a models.Actor) bool {
	return a.IsClient() && o.ClientID == a.ID
}

func admin(_ *models.Order, a models.Actor) bool {
	return a.IsAdmin()
}

func either(checks ...func(*models.Order, models.Actor) bool) func(*models.Order, models.Actor) bool {
	return func(o *models.Order, a models.Actor) bool {
		for _, check := range checks {
			if check(o, a) {
				return true
			}
		}
		return false
	}
}
