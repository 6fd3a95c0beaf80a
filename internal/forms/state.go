package forms

// State is the lifecycle position of a form session.
//
// COLLECTING -> AWAITING_CONFIRMATION -> {SUBMITTED, CANCELLED}
//
// COLLECTING is initial. SUBMITTED and CANCELLED are terminal; the render
// pipeline runs at most once per session and only on the SUBMITTED path.
type State string

const (
	StateCollecting           State = "COLLECTING"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
	StateSubmitted            State = "SUBMITTED"
	StateCancelled            State = "CANCELLED"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateSubmitted || s == StateCancelled
}
