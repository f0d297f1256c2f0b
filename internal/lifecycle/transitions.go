package lifecycle

import model "auction-engine/internal/models"

// Action is a lifecycle trigger
type Action string

const (
	ActionActivate Action = "activate"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionEnd      Action = "end"
	ActionCancel   Action = "cancel"
	ActionSettle   Action = "settle"
)

// NextStatus returns the status reached by applying act in from, or false if
// the transition is not allowed.
func NextStatus(from model.AuctionStatus, act Action) (model.AuctionStatus, bool) {
	switch from {
	case model.StatusScheduled:
		switch act {
		case ActionActivate:
			return model.StatusActive, true
		case ActionCancel:
			return model.StatusCancelled, true
		}
	case model.StatusActive:
		switch act {
		case ActionPause:
			return model.StatusPaused, true
		case ActionEnd:
			return model.StatusEnded, true
		case ActionCancel:
			return model.StatusCancelled, true
		}
	case model.StatusPaused:
		switch act {
		case ActionResume:
			return model.StatusActive, true
		case ActionEnd:
			return model.StatusEnded, true
		case ActionCancel:
			return model.StatusCancelled, true
		}
	case model.StatusEnded:
		if act == ActionSettle {
			return model.StatusSettled, true
		}
	case model.StatusSettled, model.StatusCancelled:
	}
	return from, false
}
