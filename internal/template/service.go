package template

import (
	"context"
	"fmt"
	"sort"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
	"file-lifecycle-manager/internal/workflow"
)

type Service interface {
	Resolve(ctx context.Context, departmentID uint64, fileType string) ([]workflow.TemplateLevel, error)
	List(ctx context.Context, departmentID uint64) ([]domain.WorkflowTemplate, error)
	Create(ctx context.Context, requesterID uint64, req CreateTemplateRequest) (*domain.WorkflowTemplate, error)
}

type RoleLookup interface {
	RoleOf(ctx context.Context, userID, departmentID uint64) (workflow.Role, bool, error)
}

type LevelInput struct {
	Level          int    `json:"level" binding:"required,min=1"`
	Role           string `json:"role" binding:"required"`
	AuthorityLevel int    `json:"authority_level" binding:"min=0"`
}

type CreateTemplateRequest struct {
	Name         string       `json:"name" binding:"required,max=255"`
	DepartmentID uint64       `json:"-"`
	FileType     string       `json:"file_type" binding:"max=64"`
	Levels       []LevelInput `json:"levels" binding:"dive"`
}

type DefaultService struct {
	repository Repository
	roles      RoleLookup
}

func NewService(repository Repository, roles RoleLookup) Service {
	return &DefaultService{repository: repository, roles: roles}
}

// Resolve returns the ordered levels of the most specific active template.
// No template at all is an empty workflow.
func (s *DefaultService) Resolve(ctx context.Context, departmentID uint64, fileType string) ([]workflow.TemplateLevel, error) {
	candidates, err := s.repository.FindCandidates(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	tpl := MostSpecific(candidates, departmentID, fileType)
	if tpl == nil {
		return []workflow.TemplateLevel{}, nil
	}
	return ToTemplateLevels(tpl.Levels), nil
}

// MostSpecific picks department+file type, then the department default, then
// the global default. Among equals the first candidate wins.
func MostSpecific(candidates []domain.WorkflowTemplate, departmentID uint64, fileType string) *domain.WorkflowTemplate {
	best, bestRank := -1, 0
	for i := range candidates {
		rank := specificity(&candidates[i], departmentID, fileType)
		if rank > bestRank {
			best, bestRank = i, rank
		}
	}
	if best < 0 {
		return nil
	}
	return &candidates[best]
}

func specificity(t *domain.WorkflowTemplate, departmentID uint64, fileType string) int {
	if !t.IsActive {
		return 0
	}
	switch {
	case t.DepartmentID != nil && *t.DepartmentID == departmentID && t.FileType != "" && t.FileType == fileType:
		return 3
	case t.DepartmentID != nil && *t.DepartmentID == departmentID && t.FileType == "":
		return 2
	case t.DepartmentID == nil && t.FileType == "":
		return 1
	}
	return 0
}

func ToTemplateLevels(levels []domain.WorkflowTemplateLevel) []workflow.TemplateLevel {
	out := make([]workflow.TemplateLevel, len(levels))
	for i, l := range levels {
		role := workflow.Role(l.Role)
		authority := l.AuthorityLevel
		if authority == 0 {
			authority = workflow.AuthorityOf(role)
		}
		out[i] = workflow.TemplateLevel{Level: l.Level, Role: role, AuthorityLevel: authority}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

func (s *DefaultService) List(ctx context.Context, departmentID uint64) ([]domain.WorkflowTemplate, error) {
	return s.repository.ListForDepartment(ctx, departmentID)
}

// Create stores a department template. Only a department Admin may do so.
func (s *DefaultService) Create(ctx context.Context, requesterID uint64, req CreateTemplateRequest) (*domain.WorkflowTemplate, error) {
	role, ok, err := s.roles.RoleOf(ctx, requesterID, req.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !ok || role != workflow.RoleAdmin {
		return nil, errors.Forbidden("Only a department Admin can create workflow templates", nil)
	}

	levels, err := validateLevels(req.Levels)
	if err != nil {
		return nil, err
	}

	deptID := req.DepartmentID
	tpl := &domain.WorkflowTemplate{
		Name:         req.Name,
		DepartmentID: &deptID,
		FileType:     req.FileType,
		IsActive:     true,
		Levels:       levels,
	}
	if err := s.repository.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// validateLevels requires levels numbered 1..n without gaps and known
// approver roles. Admin never approves a level.
func validateLevels(in []LevelInput) ([]domain.WorkflowTemplateLevel, error) {
	sorted := make([]LevelInput, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })

	out := make([]domain.WorkflowTemplateLevel, 0, len(sorted))
	for i, l := range sorted {
		if l.Level != i+1 {
			return nil, errors.BadRequest(fmt.Sprintf("Levels must be numbered 1..%d without gaps", len(sorted)), nil)
		}
		role, ok := workflow.ParseRole(l.Role)
		if !ok {
			return nil, errors.BadRequest(fmt.Sprintf("Unknown role %q at level %d", l.Role, l.Level), nil)
		}
		if role == workflow.RoleAdmin {
			return nil, errors.BadRequest(fmt.Sprintf("Admin cannot be the approver at level %d", l.Level), nil)
		}
		authority := l.AuthorityLevel
		if authority == 0 {
			authority = workflow.AuthorityOf(role)
		}
		out = append(out, domain.WorkflowTemplateLevel{
			Level:          l.Level,
			Role:           role.String(),
			AuthorityLevel: authority,
		})
	}
	return out, nil
}
