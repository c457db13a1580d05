// Package flightstate implements the flight operation state machine defined
// by ASTM F3548-21: a pure, side-effect-free transition function over a
// closed set of states and events. Callers (pkg/orchestrator) are
// responsible for running any side effects a transition implies; this
// package only ever answers "given this state and this event, what state
// comes next".
package flightstate

// State is a flight operation's position in the ASTM F3548-21 lifecycle.
type State int

const (
	NotSubmitted State = 0
	Accepted     State = 1
	Activated    State = 2
	Nonconforming State = 3
	Contingent   State = 4
	Ended        State = 5
	Withdrawn    State = 6
	Cancelled    State = 7
	Rejected     State = 8
)

// String returns the canonical name of the state.
func (s State) String() string {
	switch s {
	case NotSubmitted:
		return "NotSubmitted"
	case Accepted:
		return "Accepted"
	case Activated:
		return "Activated"
	case Nonconforming:
		return "Nonconforming"
	case Contingent:
		return "Contingent"
	case Ended:
		return "Ended"
	case Withdrawn:
		return "Withdrawn"
	case Cancelled:
		return "Cancelled"
	case Rejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is a recognized state.
func (s State) Valid() bool {
	return s >= NotSubmitted && s <= Rejected
}

// Event is one of the closed set of triggers that can move a flight
// declaration between states.
type Event string

const (
	EventDSSAccepts                      Event = "dss_accepts"
	EventDSSRejects                       Event = "dss_rejects"
	EventOperatorActivates                Event = "operator_activates"
	EventOperatorConfirmsEnded            Event = "operator_confirms_ended"
	EventOperatorWithdraws                Event = "operator_withdraws"
	EventOperatorCancels                  Event = "operator_cancels"
	EventUADepartsEarlyLateOutsideOpIntent Event = "ua_departs_early_late_outside_op_intent"
	EventUAExitsCoordinatedOpIntent        Event = "ua_exits_coordinated_op_intent"
	EventOperatorInitiatesContingent       Event = "operator_initiates_contingent"
	EventOperatorReturnsToCoordinatedOpIntent Event = "operator_return_to_coordinated_op_intent"
	EventOperatorConfirmsContingent        Event = "operator_confirms_contingent"
	EventTimeout                          Event = "timeout"
	// EventBlenderConfirmsContingent is raised by the conformance monitor
	// itself (never the operator) for codes whose severity warrants a
	// corrective transition regardless of which state the declaration is
	// currently in. Conformance-driven transitions set the target state
	// directly (pkg/conformance.EventFor, orchestrator.SubmitConformance)
	// rather than dispatching through Transition, so this event never
	// appears in the switch below — it exists purely as an audit/side-effect
	// label, matching the reference system's BLENDER_CONFIRMS_CONTINGENT.
	EventBlenderConfirmsContingent Event = "blender_confirms_contingent"
)

// Transition computes the next state for (state, event). ok is false when
// the event has no effect from the current state, in which case next equals
// state unchanged, mirroring the Python reference's "return self" default.
// flightdecl.Declaration.ApplyEvent reports this case as ErrInvalidTransition.
func Transition(state State, event Event) (next State, ok bool) {
	switch state {
	case NotSubmitted:
		switch event {
		case EventDSSAccepts:
			return Accepted, true
		case EventDSSRejects:
			return Rejected, true
		case EventOperatorWithdraws:
			return Withdrawn, true
		}

	case Accepted:
		switch event {
		case EventOperatorActivates:
			return Activated, true
		case EventOperatorConfirmsEnded:
			return Ended, true
		case EventUADepartsEarlyLateOutsideOpIntent:
			return Nonconforming, true
		case EventOperatorWithdraws:
			return Withdrawn, true
		case EventOperatorCancels:
			return Cancelled, true
		}

	case Activated:
		switch event {
		case EventOperatorConfirmsEnded:
			return Ended, true
		case EventUAExitsCoordinatedOpIntent:
			return Nonconforming, true
		case EventOperatorInitiatesContingent:
			return Contingent, true
		}

	case Nonconforming:
		switch event {
		case EventOperatorReturnsToCoordinatedOpIntent:
			return Activated, true
		case EventOperatorConfirmsEnded:
			return Ended, true
		case EventTimeout, EventOperatorConfirmsContingent:
			return Contingent, true
		}

	case Contingent:
		switch event {
		case EventOperatorConfirmsEnded:
			return Ended, true
		}

	case Ended, Withdrawn, Cancelled, Rejected:
		// Terminal states: no event ever moves out of them.
	}

	return state, false
}

// reachableStates are the states the ASTM F3548-21 conformance monitoring
// helper (FlightOperationConformanceHelper in the original system) actually
// projects flight declarations into at runtime. Withdrawn, Cancelled, and
// Rejected are legal terminal states that the operator API can set directly
// but which the state machine's int<->state mapping never round-trips,
// matching match_state/get_status in the source system.
var reachableStates = map[State]bool{
	NotSubmitted:  true,
	Accepted:      true,
	Activated:     true,
	Nonconforming: true,
	Contingent:    true,
	Ended:         true,
}

// ReachableByConformanceMonitoring reports whether s is one of the states
// the conformance monitoring state machine can report via MatchState/Status,
// as opposed to Withdrawn/Cancelled/Rejected which are operator-API-only
// terminal states outside the monitored lifecycle.
func ReachableByConformanceMonitoring(s State) bool {
	return reachableStates[s]
}

// MatchState maps an integer status code to a State, returning false for
// codes outside 0-5 (the range the conformance monitoring subsystem
// recognizes).
func MatchState(status int) (State, bool) {
	s := State(status)
	if !ReachableByConformanceMonitoring(s) {
		return 0, false
	}
	return s, true
}
