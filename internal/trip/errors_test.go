package trip

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"validation", invalid("query", ErrEmptyQuery), KindValidation},
		{"no places", ErrNoPlaces, KindEmptyResult},
		{"wrapped no itinerary", fmt.Errorf("plan: %w", ErrNoItinerary), KindEmptyResult},
		{"transport", &TransportError{Op: IntentPlan, Status: 502}, KindTransport},
		{"unknown", errors.New("weird"), KindTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Please enter a location to search.", Message(invalid("query", ErrEmptyQuery)))
	assert.Equal(t, "Please select at least 2 places to get a travel breakdown.", Message(invalid("selection", ErrTooFewPlaces)))
	assert.Equal(t, "Please enter your starting location.", Message(invalid("start location", ErrNoStartLocation)))
	assert.Equal(t, "Something went wrong. Please try again.", Message(errors.New("socket closed")))
}

func TestTransportErrorText(t *testing.T) {
	err := &TransportError{Op: "plan", Status: 422, Detail: "bad places", Err: errors.New("decode")}
	assert.Equal(t, "plan: status 422: bad places: decode", err.Error())
	assert.ErrorIs(t, fmt.Errorf("wrap: %w", err), err.Err)
}
