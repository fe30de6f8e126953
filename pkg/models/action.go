package models

import (
	"fmt"

	"taxiorders/pkg/errs"
)

type Action string

const (
	ActionAccept   Action = "accept"
	ActionDecline  Action = "decline"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionAccept, ActionDecline, ActionStart, ActionComplete, ActionCancel:
		return a, nil
	}
	return "", errs.NewValidationErrorWithCause("action", fmt.Errorf("%q is not a known action", s))
}
