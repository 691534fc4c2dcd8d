package workflow

import (
	"context"
	"fmt"
	"time"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// ActionRequest asks the engine to apply one action to a file.
type ActionRequest struct {
	FileID   uint64
	UserID   uint64
	Action   domain.Action
	Remarks  string
	ClientIP string
}

type Engine struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   log.With().Str("component", "workflow").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateFileWithWorkflow inserts a DRAFT file and its workflow instance in a
// single transaction.
func (e *Engine) CreateFileWithWorkflow(ctx context.Context, file *domain.File, levels []TemplateLevel, creatorRole Role) (*Instance, error) {
	var inst *Instance
	err := e.store.WithinTransaction(ctx, func(tx Tx) error {
		file.CurrentState = domain.StateDraft
		file.CurrentLevel = 0
		if err := tx.CreateFile(ctx, file); err != nil {
			return err
		}

		var err error
		inst, err = e.InitializeWorkflowInstance(ctx, tx, file, levels, creatorRole)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// InitializeWorkflowInstance persists one level row per template level and
// one audit entry per skipped level inside tx. The caller owns tx.
func (e *Engine) InitializeWorkflowInstance(ctx context.Context, tx Tx, file *domain.File, levels []TemplateLevel, creatorRole Role) (*Instance, error) {
	inst := Initialize(file, levels, creatorRole, e.now())

	if err := tx.InsertLevels(ctx, inst.Levels); err != nil {
		return nil, err
	}
	if len(inst.SkipAudits) > 0 {
		entries := make([]*domain.AuditTrailEntry, len(inst.SkipAudits))
		for i := range inst.SkipAudits {
			entries[i] = &inst.SkipAudits[i]
		}
		if err := tx.InsertAudit(ctx, entries...); err != nil {
			return nil, err
		}
	}

	e.log.Info().
		Uint64("file_id", file.ID).
		Int("levels", len(inst.Levels)).
		Int("skipped", len(inst.SkipAudits)).
		Int("first_active_level", inst.FirstActiveLevel).
		Msg("workflow instance initialized")

	return inst, nil
}

// ExecuteAction applies req to the file under an exclusive row lock. Either
// every write (file position, level rows, participant, audit) commits or none.
func (e *Engine) ExecuteAction(ctx context.Context, req ActionRequest) (*domain.File, error) {
	var (
		updated *domain.File
		from    position
		to      position
	)

	err := e.store.WithinTransaction(ctx, func(tx Tx) error {
		file, err := tx.LockFile(ctx, req.FileID)
		if err != nil {
			return err
		}
		if file == nil {
			return errors.NotFound(fmt.Sprintf("File %d not found", req.FileID), nil)
		}
		if file.CurrentState == domain.StateArchived {
			return errors.Forbidden(msgArchived, nil)
		}
		if !IsAllowed(file.CurrentState, req.Action) {
			if !IsKnownAction(req.Action) {
				return errors.UnknownAction(string(req.Action))
			}
			return errors.InvalidTransition(string(req.Action), string(file.CurrentState))
		}

		role, hasRole, err := tx.RoleOf(ctx, req.UserID, file.DepartmentID)
		if err != nil {
			return err
		}

		var current *domain.WorkflowLevel
		if file.CurrentLevel > 0 {
			if current, err = tx.FindLevel(ctx, file.ID, file.CurrentLevel); err != nil {
				return err
			}
		}

		if err := Authorize(Subject{
			File:         file,
			Action:       req.Action,
			ActorID:      req.UserID,
			ActorRole:    role,
			HasRole:      hasRole,
			CurrentLevel: current,
		}); err != nil {
			return err
		}

		from = position{State: file.CurrentState, Level: file.CurrentLevel}
		to, err = e.nextPosition(ctx, tx, file, req.Action)
		if err != nil {
			return err
		}

		if err := tx.UpdateFilePosition(ctx, file.ID, to.State, to.Level); err != nil {
			return err
		}

		now := e.now()
		if err := e.updateLevels(ctx, tx, file.ID, req, from, to, current, now); err != nil {
			return err
		}

		if IsApprovalClass(req.Action) {
			if err := tx.InsertParticipant(ctx, &domain.WorkflowParticipant{
				FileID:       file.ID,
				Level:        from.Level,
				Role:         role.String(),
				DepartmentID: file.DepartmentID,
				Action:       req.Action,
				ActorID:      req.UserID,
				Remarks:      req.Remarks,
				ActedAt:      now,
			}); err != nil {
				return err
			}
		}

		entry := &domain.AuditTrailEntry{
			FileID:        file.ID,
			Action:        req.Action,
			PerformedByID: req.UserID,
			PerformedAt:   now,
			Details:       describe(req.Action, from, to),
			Metadata: datatypes.NewJSONType(domain.AuditMetadata{
				FromState:       from.State,
				ToState:         to.State,
				FromLevel:       from.Level,
				ToLevel:         to.Level,
				PerformedByRole: role.String(),
			}),
		}
		if req.ClientIP != "" {
			ip := req.ClientIP
			entry.IPAddress = &ip
		}
		if err := tx.InsertAudit(ctx, entry); err != nil {
			return err
		}

		updated, err = tx.FindFile(ctx, file.ID)
		return err
	})

	if err != nil {
		e.log.Debug().
			Err(err).
			Uint64("file_id", req.FileID).
			Uint64("user_id", req.UserID).
			Str("action", string(req.Action)).
			Msg("workflow action refused")
		return nil, err
	}

	e.log.Info().
		Uint64("file_id", req.FileID).
		Uint64("user_id", req.UserID).
		Str("action", string(req.Action)).
		Str("from_state", string(from.State)).
		Str("to_state", string(to.State)).
		Int("from_level", from.Level).
		Int("to_level", to.Level).
		Msg("workflow action applied")

	return updated, nil
}

// updateLevels closes the level the action was taken at and activates the
// level the file now waits on.
func (e *Engine) updateLevels(ctx context.Context, tx Tx, fileID uint64, req ActionRequest, from, to position, current *domain.WorkflowLevel, now time.Time) error {
	var remarks *string
	if req.Remarks != "" {
		r := req.Remarks
		remarks = &r
	}

	if current != nil && from.Level > 0 {
		changed := true
		switch req.Action {
		case domain.ActionApprove:
			uid := req.UserID
			current.Status = domain.LevelCompleted
			current.CompletedByID = &uid
			current.CompletedAt = &now
			current.Remarks = remarks
		case domain.ActionReturn, domain.ActionReject:
			current.Status = domain.LevelReturned
			current.Remarks = remarks
		case domain.ActionHold:
			current.Status = domain.LevelPending
		default:
			changed = false
		}
		if changed {
			current.UpdatedAt = now
			if err := tx.SaveLevel(ctx, current); err != nil {
				return err
			}
		}
	}

	if to.State != domain.StateInReview {
		return nil
	}
	reactivates := req.Action == domain.ActionSubmit || req.Action == domain.ActionResubmit || req.Action == domain.ActionResume
	if to.Level == from.Level && !reactivates {
		return nil
	}

	next := current
	if next == nil || next.Level != to.Level {
		var err error
		if next, err = tx.FindLevel(ctx, fileID, to.Level); err != nil {
			return err
		}
		if next == nil {
			return errors.Internal(fmt.Errorf("workflow level %d missing for file %d", to.Level, fileID))
		}
	}
	next.Status = domain.LevelActive
	next.UpdatedAt = now
	return tx.SaveLevel(ctx, next)
}
