// internal/domain/checkout/state_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitionsFollowCheckoutOrder(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		allowed bool
	}{
		{"cart to address", StateCart, StateAddressSet, true},
		{"cart cannot skip to shipping", StateCart, StateShippingSet, false},
		{"cart cannot skip to payment", StateCart, StatePaymentAuthorized, false},
		{"cart cannot skip to completed", StateCart, StateCompleted, false},
		{"address to shipping", StateAddressSet, StateShippingSet, true},
		{"address cannot skip to payment", StateAddressSet, StatePaymentAuthorized, false},
		{"shipping to payment", StateShippingSet, StatePaymentAuthorized, true},
		{"shipping cannot skip to completed", StateShippingSet, StateCompleted, false},
		{"payment to completed", StatePaymentAuthorized, StateCompleted, true},
		{"any step can abandon", StateCart, StateAbandoned, true},
		{"authorized can abandon", StatePaymentAuthorized, StateAbandoned, true},
		{"authorized can fail", StatePaymentAuthorized, StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStateBackwardEdgesAllowRedoingEarlierSteps(t *testing.T) {
	// Re-entering an earlier step is how an address or shipping change
	// after authorization is expressed.
	assert.True(t, StateShippingSet.CanTransitionTo(StateAddressSet))
	assert.True(t, StatePaymentAuthorized.CanTransitionTo(StateAddressSet))
	assert.True(t, StatePaymentAuthorized.CanTransitionTo(StateShippingSet))
	assert.True(t, StatePaymentAuthorized.CanTransitionTo(StatePaymentAuthorized))
	assert.True(t, StateAddressSet.CanTransitionTo(StateAddressSet))
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	all := []State{StateCart, StateAddressSet, StateShippingSet, StatePaymentAuthorized, StateCompleted, StateFailed, StateAbandoned}

	for _, terminal := range []State{StateCompleted, StateFailed, StateAbandoned} {
		assert.True(t, terminal.IsTerminal(), "%s should be terminal", terminal)
		for _, target := range all {
			assert.False(t, terminal.CanTransitionTo(target), "%s -> %s should be rejected", terminal, target)
		}
	}

	for _, live := range []State{StateCart, StateAddressSet, StateShippingSet, StatePaymentAuthorized} {
		assert.False(t, live.IsTerminal(), "%s should not be terminal", live)
	}
}
