package workflow

import (
	"context"
	"fmt"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
)

// AllowedActions lists the actions userID may take on the file right now.
// It runs the same Authorize rules ExecuteAction runs.
func (e *Engine) AllowedActions(ctx context.Context, fileID, userID uint64) ([]domain.Action, error) {
	file, err := e.store.FindFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errors.NotFound(fmt.Sprintf("File %d not found", fileID), nil)
	}
	if file.CurrentState == domain.StateArchived {
		return []domain.Action{}, nil
	}

	role, hasRole, err := e.store.RoleOf(ctx, userID, file.DepartmentID)
	if err != nil {
		return nil, err
	}

	var current *domain.WorkflowLevel
	if file.CurrentLevel > 0 {
		if current, err = e.store.FindLevel(ctx, file.ID, file.CurrentLevel); err != nil {
			return nil, err
		}
	}

	allowed := []domain.Action{}
	for _, action := range ActionsFor(file.CurrentState) {
		err := Authorize(Subject{
			File:         file,
			Action:       action,
			ActorID:      userID,
			ActorRole:    role,
			HasRole:      hasRole,
			CurrentLevel: current,
		})
		if err == nil {
			allowed = append(allowed, action)
		}
	}
	return allowed, nil
}

// LevelsForFile returns the file's workflow levels in ascending order.
func (e *Engine) LevelsForFile(ctx context.Context, fileID uint64) ([]domain.WorkflowLevel, error) {
	return e.store.ListLevels(ctx, fileID)
}

func (e *Engine) IsAdmin(ctx context.Context, userID, departmentID uint64) (bool, error) {
	role, ok, err := e.store.RoleOf(ctx, userID, departmentID)
	if err != nil {
		return false, err
	}
	return ok && role == RoleAdmin, nil
}
