// internal/domain/checkout/state.go
package checkout

// State represents where a checkout session is in its lifecycle
type State string

const (
	// StateCart is the entry state: checkout opened, nothing collected yet
	StateCart State = "cart"

	// StateAddressSet means shipping and billing addresses are stored
	StateAddressSet State = "address_set"

	// StateShippingSet means a method from the current quote was chosen
	StateShippingSet State = "shipping_set"

	// StatePaymentAuthorized means the gateway holds funds for the total
	StatePaymentAuthorized State = "payment_authorized"

	// StateCompleted means payment was captured and the order exists
	StateCompleted State = "completed"

	// StateFailed absorbs non-recoverable failures; FailureStep and
	// FailureReason on the session record what broke
	StateFailed State = "failed"

	// StateAbandoned is reached by explicit cancellation; the cart has
	// been returned to active
	StateAbandoned State = "abandoned"
)

// Failure steps recorded on sessions that end up in StateFailed.
const (
	FailureStepCapture     = "payment-capture"
	FailureStepMaterialize = "order-materialize"
)

// stateTransitions lists, per state, the states a session may move to.
// The backward edges implement re-entrancy: re-doing an earlier step
// resets everything after it.
var stateTransitions = map[State][]State{
	StateCart:              {StateAddressSet, StateFailed, StateAbandoned},
	StateAddressSet:        {StateAddressSet, StateShippingSet, StateFailed, StateAbandoned},
	StateShippingSet:       {StateAddressSet, StateShippingSet, StatePaymentAuthorized, StateFailed, StateAbandoned},
	StatePaymentAuthorized: {StateAddressSet, StateShippingSet, StatePaymentAuthorized, StateCompleted, StateFailed, StateAbandoned},
	StateCompleted:         {},
	StateFailed:            {},
	StateAbandoned:         {},
}

// CanTransitionTo reports whether moving from s to target is legal
func (s State) CanTransitionTo(target State) bool {
	for _, allowed := range stateTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the session can make no further progress
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateAbandoned:
		return true
	}
	return false
}

// String implements fmt.Stringer
func (s State) String() string {
	return string(s)
}
