package booking

import "github.com/mkravets/tripbooking/internal/domain"

type transitionAction int

const (
	actionReject transitionAction = iota
	actionNoop
	actionConfirm
	actionCancel
	actionWrite
)

// transitions is the full state x requested-status table. Canceled is
// terminal; requesting the current status is always a no-op; only the
// transition into confirmed carries the merge-and-reprice action.
var transitions = map[domain.BookingStatus]map[domain.BookingStatus]transitionAction{
	domain.BookingStatusPending: {
		domain.BookingStatusPending:   actionNoop,
		domain.BookingStatusConfirmed: actionConfirm,
		domain.BookingStatusCanceled:  actionCancel,
	},
	domain.BookingStatusConfirmed: {
		domain.BookingStatusPending:   actionWrite,
		domain.BookingStatusConfirmed: actionNoop,
		domain.BookingStatusCanceled:  actionCancel,
	},
	domain.BookingStatusCanceled: {
		domain.BookingStatusPending:   actionReject,
		domain.BookingStatusConfirmed: actionReject,
		domain.BookingStatusCanceled:  actionReject,
	},
}

func transitionFor(current, target domain.BookingStatus) transitionAction {
	if row, ok := transitions[current]; ok {
		if action, ok := row[target]; ok {
			return action
		}
	}
	return actionReject
}
