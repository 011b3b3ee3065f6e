package workflow

// State is the resolver workflow phase. Exactly one is live at a time.
type State string

const (
	StateClosed        State = "closed"
	StateAnalyzing     State = "analyzing"
	StateProposing     State = "proposing"
	StateConfirming    State = "confirming"
	StateAttempting    State = "attempting"
	StateAttemptFailed State = "attempt_failed"
	StateEscalated     State = "escalated"
	StateSubmitted     State = "submitted"

	// StateResolved is only reachable when the outcome policy reports success.
	StateResolved State = "resolved"
)

// Command names an input to the state machine, either user intent or an
// internal completion.
type Command string

const (
	CommandOpen              Command = "open"
	CommandClose             Command = "close"
	CommandAnalysisComplete  Command = "analysis_complete"
	CommandShowConsent       Command = "show_consent"
	CommandToggleConsent     Command = "toggle_consent"
	CommandConfirmAttempt    Command = "confirm_attempt"
	CommandStepComplete      Command = "step_complete"
	CommandAttemptFinished   Command = "attempt_finished"
	CommandToggleIncludeLogs Command = "toggle_include_logs"
	CommandEscalate          Command = "escalate"
	CommandSubmitTicket      Command = "submit_ticket"
)

// transitions is the authoritative table of legal moves. close is handled
// separately because it applies from every open state.
var transitions = map[State]map[Command][]State{
	StateClosed: {
		CommandOpen: {StateAnalyzing},
	},
	StateAnalyzing: {
		CommandAnalysisComplete: {StateProposing},
	},
	StateProposing: {
		CommandShowConsent: {StateConfirming},
		CommandEscalate:    {StateEscalated},
	},
	StateConfirming: {
		CommandToggleConsent:  {StateConfirming},
		CommandConfirmAttempt: {StateAttempting},
	},
	StateAttempting: {
		CommandStepComplete:    {StateAttempting},
		CommandAttemptFinished: {StateAttemptFailed, StateResolved},
	},
	StateAttemptFailed: {
		CommandToggleIncludeLogs: {StateAttemptFailed},
		CommandEscalate:          {StateEscalated},
	},
	StateEscalated: {
		CommandSubmitTicket: {StateSubmitted},
	},
}

// allowed reports whether cmd may move from into to.
func allowed(from State, cmd Command, to State) bool {
	if cmd == CommandClose {
		return from != StateClosed && to == StateClosed
	}
	for _, target := range transitions[from][cmd] {
		if target == to {
			return true
		}
	}
	return false
}

// accepts reports whether cmd is legal in from at all.
func accepts(from State, cmd Command) bool {
	if cmd == CommandClose {
		return from != StateClosed
	}
	_, ok := transitions[from][cmd]
	return ok
}

// IsTerminal reports whether the session has ended and only close remains.
func (s State) IsTerminal() bool {
	return s == StateSubmitted || s == StateResolved
}
