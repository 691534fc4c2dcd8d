package workflow

import "file-lifecycle-manager/internal/domain"

var transitions = map[domain.FileState][]domain.Action{
	domain.StateDraft:    {domain.ActionSaveDraft, domain.ActionSubmit},
	domain.StateInReview: {domain.ActionApprove, domain.ActionReturn, domain.ActionHold, domain.ActionReject},
	domain.StateReturned: {domain.ActionResubmit},
	domain.StateCabinet:  {domain.ActionResume},
	domain.StateApproved: {domain.ActionArchive},
	domain.StateRejected: {},
	domain.StateArchived: {},
}

// IsAllowed reports whether action is legal from state.
func IsAllowed(state domain.FileState, action domain.Action) bool {
	for _, a := range transitions[state] {
		if a == action {
			return true
		}
	}
	return false
}

// ActionsFor returns the actions legal from state, in table order.
func ActionsFor(state domain.FileState) []domain.Action {
	allowed := transitions[state]
	out := make([]domain.Action, len(allowed))
	copy(out, allowed)
	return out
}

// IsKnownAction reports whether a is one of the requestable workflow actions.
func IsKnownAction(a domain.Action) bool {
	switch a {
	case domain.ActionSaveDraft, domain.ActionSubmit, domain.ActionApprove,
		domain.ActionReturn, domain.ActionResubmit, domain.ActionHold,
		domain.ActionResume, domain.ActionReject, domain.ActionArchive:
		return true
	}
	return false
}

func isCreatorOnly(a domain.Action) bool {
	return a == domain.ActionSubmit || a == domain.ActionResubmit || a == domain.ActionSaveDraft
}

// IsApprovalClass reports whether a must be taken by the holder of the
// active level's role. These are also the actions recorded as participants.
func IsApprovalClass(a domain.Action) bool {
	switch a {
	case domain.ActionApprove, domain.ActionReturn, domain.ActionHold,
		domain.ActionResume, domain.ActionReject:
		return true
	}
	return false
}
