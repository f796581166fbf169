package web

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"blog/domain"
)

func TestScreen_Transitions(t *testing.T) {
	post := &domain.Post{ID: "p1", Title: "Hello"}

	tests := []struct {
		from  State
		event Event
		post  *domain.Post
		want  State
	}{
		{StateList, EventNew, nil, StateCreate},
		{StateList, EventEdit, post, StateEdit},
		{StateList, EventView, post, StateView},
		{StateCreate, EventSaved, nil, StateList},
		{StateCreate, EventCancel, nil, StateList},
		{StateEdit, EventSaved, nil, StateList},
		{StateEdit, EventCancel, nil, StateList},
		{StateView, EventBack, nil, StateList},
		{StateView, EventEdit, post, StateEdit},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			from := Screen{State: tt.from}
			if tt.from == StateEdit || tt.from == StateView {
				from.Post = post
			}

			next, err := from.Next(tt.event, tt.post)
			assert.NilError(t, err)
			assert.Equal(t, next.State, tt.want)
			if tt.want == StateEdit || tt.want == StateView {
				assert.Equal(t, next.Post, post)
			} else {
				assert.Assert(t, next.Post == nil)
			}
		})
	}
}

func TestScreen_InvalidTransitions(t *testing.T) {
	post := &domain.Post{ID: "p1"}

	tests := []struct {
		name  string
		from  Screen
		event Event
		post  *domain.Post
	}{
		{"save from list", Initial(), EventSaved, nil},
		{"back from list", Initial(), EventBack, nil},
		{"view from create", Screen{State: StateCreate}, EventView, post},
		{"new from view", Screen{State: StateView, Post: post}, EventNew, nil},
		{"edit without post", Initial(), EventEdit, nil},
		{"unknown state", Screen{State: "settings"}, EventNew, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.from.Next(tt.event, tt.post)
			assert.Assert(t, errors.Is(err, ErrInvalidTransition))
			assert.DeepEqual(t, next, tt.from)
		})
	}
}

func TestInitial(t *testing.T) {
	assert.DeepEqual(t, Initial(), Screen{State: StateList})
}
