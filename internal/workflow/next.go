package workflow

import (
	"context"
	"fmt"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
)

// position is the (state, level) pair stored on the file row.
type position struct {
	State domain.FileState
	Level int
}

func (e *Engine) nextPosition(ctx context.Context, tx Tx, file *domain.File, action domain.Action) (position, error) {
	var candidate *domain.WorkflowLevel
	var err error

	switch action {
	case domain.ActionSubmit:
		candidate, err = tx.FirstActiveLevel(ctx, file.ID)
	case domain.ActionApprove:
		candidate, err = tx.NextActiveLevel(ctx, file.ID, file.CurrentLevel)
	}
	if err != nil {
		return position{}, err
	}

	return next(action, position{State: file.CurrentState, Level: file.CurrentLevel}, candidate)
}

// next computes the position after action. candidate is the first
// non-skipped level (SUBMIT) or the next non-skipped level above the current
// one (APPROVE); nil when none exists.
func next(action domain.Action, cur position, candidate *domain.WorkflowLevel) (position, error) {
	switch action {
	case domain.ActionSaveDraft:
		return cur, nil
	case domain.ActionSubmit:
		if candidate == nil {
			// nothing to review: every level skipped or no levels at all
			return position{State: domain.StateApproved, Level: 0}, nil
		}
		return position{State: domain.StateInReview, Level: candidate.Level}, nil
	case domain.ActionApprove:
		if candidate == nil {
			return position{State: domain.StateApproved, Level: cur.Level}, nil
		}
		return position{State: domain.StateInReview, Level: candidate.Level}, nil
	case domain.ActionReturn:
		return position{State: domain.StateReturned, Level: cur.Level}, nil
	case domain.ActionResubmit:
		return position{State: domain.StateInReview, Level: cur.Level}, nil
	case domain.ActionHold:
		return position{State: domain.StateCabinet, Level: cur.Level}, nil
	case domain.ActionResume:
		return position{State: domain.StateInReview, Level: cur.Level}, nil
	case domain.ActionReject:
		return position{State: domain.StateRejected, Level: cur.Level}, nil
	case domain.ActionArchive:
		return position{State: domain.StateArchived, Level: cur.Level}, nil
	}
	return position{}, errors.UnknownAction(string(action))
}

// describe renders the human readable audit detail for one transition.
func describe(action domain.Action, from, to position) string {
	var d string
	switch action {
	case domain.ActionSaveDraft:
		d = "Draft saved"
	case domain.ActionSubmit:
		if to.State == domain.StateApproved {
			d = "Submitted - no approval levels required, File APPROVED"
		} else {
			d = fmt.Sprintf("Submitted for review at Level %d", to.Level)
		}
	case domain.ActionApprove:
		if to.State == domain.StateApproved {
			d = "Final approval granted - File APPROVED"
		} else {
			d = fmt.Sprintf("Approved at Level %d, moved to Level %d", from.Level, to.Level)
		}
	case domain.ActionReturn:
		d = fmt.Sprintf("Returned at Level %d for revision", from.Level)
	case domain.ActionResubmit:
		d = fmt.Sprintf("Resubmitted at Level %d", to.Level)
	case domain.ActionHold:
		d = fmt.Sprintf("Placed on hold (cabinet) at Level %d", from.Level)
	case domain.ActionResume:
		d = fmt.Sprintf("Resumed review at Level %d", to.Level)
	case domain.ActionReject:
		d = fmt.Sprintf("Rejected at Level %d - File REJECTED", from.Level)
	case domain.ActionArchive:
		d = "File archived"
	default:
		d = string(action)
	}
	return d
}
