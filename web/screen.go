package web

import (
	"errors"
	"fmt"

	"blog/domain"
)

// State is the screen the UI is showing.
type State string

const (
	StateList   State = "list"
	StateCreate State = "create"
	StateEdit   State = "edit"
	StateView   State = "view"
)

// Event is a user action that may move the UI to another screen.
type Event string

const (
	EventNew    Event = "new"
	EventEdit   Event = "edit"
	EventView   Event = "view"
	EventSaved  Event = "saved"
	EventCancel Event = "cancel"
	EventBack   Event = "back"
)

var ErrInvalidTransition = errors.New("invalid transition")

// Screen is the whole navigation state: which view is shown and, for edit
// and view, the post it is about.
type Screen struct {
	State State
	Post  *domain.Post
}

// Initial is the screen shown on every fresh load.
func Initial() Screen {
	return Screen{State: StateList}
}

var transitions = map[State]map[Event]State{
	StateList: {
		EventNew:  StateCreate,
		EventEdit: StateEdit,
		EventView: StateView,
	},
	StateCreate: {
		EventSaved:  StateList,
		EventCancel: StateList,
	},
	StateEdit: {
		EventSaved:  StateList,
		EventCancel: StateList,
	},
	StateView: {
		EventBack: StateList,
		EventEdit: StateEdit,
	},
}

// Next applies ev to s. Edit and view need the selected post; every other
// target screen drops it. An event that is not valid from the current state
// leaves the screen unchanged and returns ErrInvalidTransition.
func (s Screen) Next(ev Event, post *domain.Post) (Screen, error) {
	to, ok := transitions[s.State][ev]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, s.State)
	}

	switch to {
	case StateEdit, StateView:
		if post == nil {
			return s, fmt.Errorf("%w: %s needs a post", ErrInvalidTransition, ev)
		}
		return Screen{State: to, Post: post}, nil
	default:
		return Screen{State: to}, nil
	}
}
