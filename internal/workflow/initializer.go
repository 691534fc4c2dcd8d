package workflow

import (
	"fmt"
	"sort"
	"time"

	"file-lifecycle-manager/internal/domain"

	"gorm.io/datatypes"
)

// TemplateLevel is one resolved level of a workflow template.
// AuthorityLevel 0 means "use the role's authority".
type TemplateLevel struct {
	Level          int  `json:"level"`
	Role           Role `json:"role"`
	AuthorityLevel int  `json:"authority_level"`
}

func (l TemplateLevel) authority() int {
	if l.AuthorityLevel > 0 {
		return l.AuthorityLevel
	}
	return AuthorityOf(l.Role)
}

// Instance is the workflow instance built for one file.
type Instance struct {
	Levels []domain.WorkflowLevel
	// FirstActiveLevel is the first non-skipped level, 0 when every level
	// was skipped or the template was empty.
	FirstActiveLevel int
	SkipAudits       []domain.AuditTrailEntry
}

func (i *Instance) HasActiveLevel() bool {
	return i.FirstActiveLevel > 0
}

// Initialize builds the level rows for file from the template levels.
// A level is skipped when the creator's authority is at least the level's.
func Initialize(file *domain.File, levels []TemplateLevel, creatorRole Role, now time.Time) *Instance {
	ordered := make([]TemplateLevel, len(levels))
	copy(ordered, levels)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Level < ordered[j].Level })

	creatorAuthority := AuthorityOf(creatorRole)
	inst := &Instance{Levels: make([]domain.WorkflowLevel, 0, len(ordered))}

	for _, tl := range ordered {
		required := tl.authority()
		row := domain.WorkflowLevel{
			FileID:            file.ID,
			Level:             tl.Level,
			RoleRequired:      tl.Role.String(),
			AuthorityRequired: required,
			Status:            domain.LevelPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		if creatorAuthority >= required {
			reason := fmt.Sprintf("Creator role %s (authority %d) meets or exceeds %s (authority %d)",
				creatorRole, creatorAuthority, tl.Role, required)
			row.Status = domain.LevelSkipped
			row.SkipReason = &reason
			inst.SkipAudits = append(inst.SkipAudits, domain.AuditTrailEntry{
				FileID:        file.ID,
				Action:        domain.ActionLevelSkipped,
				PerformedByID: file.CreatedByID,
				PerformedAt:   now,
				Details:       fmt.Sprintf("Level %d (%s) skipped: %s", tl.Level, tl.Role, reason),
				Metadata: datatypes.NewJSONType(domain.AuditMetadata{
					FromState:       file.CurrentState,
					ToState:         file.CurrentState,
					FromLevel:       tl.Level,
					ToLevel:         tl.Level,
					PerformedByRole: creatorRole.String(),
					SkipReason:      reason,
				}),
			})
		} else if inst.FirstActiveLevel == 0 {
			inst.FirstActiveLevel = tl.Level
		}

		inst.Levels = append(inst.Levels, row)
	}

	return inst
}
