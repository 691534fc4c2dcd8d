package workflow

import (
	"fmt"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
)

const (
	msgArchived   = "File is archived, read-only"
	msgNoDeptRole = "You hold no role in this file's department - cross-department actions are forbidden"
	msgNoLevel    = "File has no active workflow level to act on"
)

// Subject is everything the authorization rules look at.
type Subject struct {
	File         *domain.File
	Action       domain.Action
	ActorID      uint64
	ActorRole    Role
	HasRole      bool
	CurrentLevel *domain.WorkflowLevel
}

// Authorize decides whether the actor may take the action. It returns nil or
// a FORBIDDEN APIError whose message names the rule that denied it.
func Authorize(s Subject) error {
	if s.File.CurrentState == domain.StateArchived {
		return errors.Forbidden(msgArchived, nil)
	}

	isCreator := s.File.CreatedByID == s.ActorID

	switch {
	case isCreatorOnly(s.Action):
		if !isCreator {
			return errors.Forbidden(fmt.Sprintf("Only the file creator can perform %s (creator-only action)", s.Action), nil)
		}
		return nil

	case s.Action == domain.ActionArchive:
		if isCreator || (s.HasRole && s.ActorRole == RoleAdmin) {
			return nil
		}
		return errors.Forbidden("Only the file creator or a department Admin can archive this file", nil)
	}

	if !s.HasRole {
		return errors.Forbidden(msgNoDeptRole, nil)
	}
	if s.CurrentLevel == nil {
		return errors.Forbidden(msgNoLevel, nil)
	}
	if Role(s.CurrentLevel.RoleRequired) != s.ActorRole {
		return errors.Forbidden(fmt.Sprintf("Level %d requires role %s, but your role is %s",
			s.CurrentLevel.Level, s.CurrentLevel.RoleRequired, s.ActorRole), nil)
	}
	return nil
}
