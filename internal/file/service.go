package file

import (
	"context"
	defError "errors"
	"fmt"
	"time"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
	"file-lifecycle-manager/internal/utils"
	"file-lifecycle-manager/internal/worker"
	"file-lifecycle-manager/internal/workflow"
	"file-lifecycle-manager/redis"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, creatorID uint64, req CreateFileRequest) (*CreateFileResponse, error)
	ExecuteAction(ctx context.Context, req workflow.ActionRequest) (*domain.File, error)
	Get(ctx context.Context, fileID, userID uint64) (*domain.File, error)
	ListForDepartment(ctx context.Context, departmentID, userID uint64, state domain.FileState, page, pageSize int) (*PaginatedFiles, error)
	AllowedActions(ctx context.Context, fileID, userID uint64) ([]domain.Action, error)
	Levels(ctx context.Context, fileID, userID uint64) ([]domain.WorkflowLevel, error)
	AuditTrail(ctx context.Context, fileID, userID uint64, page, pageSize int) (*PaginatedAuditTrail, error)
	Participants(ctx context.Context, fileID, userID uint64) ([]domain.WorkflowParticipant, error)
}

// Workflow is the part of the workflow engine the file service drives.
type Workflow interface {
	CreateFileWithWorkflow(ctx context.Context, file *domain.File, levels []workflow.TemplateLevel, creatorRole workflow.Role) (*workflow.Instance, error)
	ExecuteAction(ctx context.Context, req workflow.ActionRequest) (*domain.File, error)
	AllowedActions(ctx context.Context, fileID, userID uint64) ([]domain.Action, error)
	LevelsForFile(ctx context.Context, fileID uint64) ([]domain.WorkflowLevel, error)
}

type RoleLookup interface {
	RoleOf(ctx context.Context, userID, departmentID uint64) (workflow.Role, bool, error)
}

type TemplateResolver interface {
	Resolve(ctx context.Context, departmentID uint64, fileType string) ([]workflow.TemplateLevel, error)
}

type CreateFileRequest struct {
	FileNumber   string `json:"file_number" binding:"required,max=64"`
	Subject      string `json:"subject" binding:"required,max=255"`
	FileType     string `json:"file_type" binding:"max=64"`
	DepartmentID uint64 `json:"department_id" binding:"required"`
}

type CreateFileResponse struct {
	File             *domain.File           `json:"file"`
	Levels           []domain.WorkflowLevel `json:"levels"`
	FirstActiveLevel int                    `json:"first_active_level"`
}

type PaginatedFiles struct {
	Data []domain.File `json:"data"`
	Meta utils.Meta    `json:"meta"`
}

type PaginatedAuditTrail struct {
	Data []domain.AuditTrailEntry `json:"data"`
	Meta utils.Meta               `json:"meta"`
}

type DefaultService struct {
	repository Repository
	workflow   Workflow
	roles      RoleLookup
	templates  TemplateResolver
	cache      *redis.Cache
	pool       *worker.WorkerPool
	cacheTTL   time.Duration
	log        zerolog.Logger
}

func NewService(
	repository Repository,
	wf Workflow,
	roles RoleLookup,
	templates TemplateResolver,
	cache *redis.Cache,
	pool *worker.WorkerPool,
	cacheTTL time.Duration,
	log zerolog.Logger,
) Service {
	return &DefaultService{
		repository: repository,
		workflow:   wf,
		roles:      roles,
		templates:  templates,
		cache:      cache,
		pool:       pool,
		cacheTTL:   cacheTTL,
		log:        log.With().Str("component", "file").Logger(),
	}
}

// VersionKey holds the counter that invalidates every cached read of a file.
func VersionKey(fileID uint64) string {
	return fmt.Sprintf("file:%d:version", fileID)
}

// Create inserts a DRAFT file together with its workflow instance resolved
// from the most specific template.
func (s *DefaultService) Create(ctx context.Context, creatorID uint64, req CreateFileRequest) (*CreateFileResponse, error) {
	role, ok, err := s.roles.RoleOf(ctx, creatorID, req.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Forbidden("You hold no role in this department", nil)
	}

	levels, err := s.templates.Resolve(ctx, req.DepartmentID, req.FileType)
	if err != nil {
		return nil, err
	}

	f := &domain.File{
		FileNumber:   req.FileNumber,
		Subject:      req.Subject,
		FileType:     req.FileType,
		DepartmentID: req.DepartmentID,
		CreatedByID:  creatorID,
	}
	inst, err := s.workflow.CreateFileWithWorkflow(ctx, f, levels, role)
	if err != nil {
		return nil, err
	}

	return &CreateFileResponse{
		File:             f,
		Levels:           inst.Levels,
		FirstActiveLevel: inst.FirstActiveLevel,
	}, nil
}

func (s *DefaultService) ExecuteAction(ctx context.Context, req workflow.ActionRequest) (*domain.File, error) {
	updated, err := s.workflow.ExecuteAction(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.IncrementVersion(ctx, VersionKey(req.FileID))
	return updated, nil
}

// visibleFile loads the file and requires the user to hold a role in its department.
func (s *DefaultService) visibleFile(ctx context.Context, fileID, userID uint64) (*domain.File, error) {
	f, err := s.repository.FindByID(ctx, fileID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound(fmt.Sprintf("File %d not found", fileID), err)
		}
		return nil, err
	}
	if err := s.requireMember(ctx, userID, f.DepartmentID); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *DefaultService) requireMember(ctx context.Context, userID, departmentID uint64) error {
	_, ok, err := s.roles.RoleOf(ctx, userID, departmentID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Forbidden("You hold no role in this file's department", nil)
	}
	return nil
}

func (s *DefaultService) Get(ctx context.Context, fileID, userID uint64) (*domain.File, error) {
	return s.visibleFile(ctx, fileID, userID)
}

func (s *DefaultService) ListForDepartment(ctx context.Context, departmentID, userID uint64, state domain.FileState, page, pageSize int) (*PaginatedFiles, error) {
	if err := s.requireMember(ctx, userID, departmentID); err != nil {
		return nil, err
	}

	files, meta, err := s.repository.ListForDepartment(ctx, departmentID, state, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &PaginatedFiles{Data: files, Meta: meta}, nil
}

func (s *DefaultService) AllowedActions(ctx context.Context, fileID, userID uint64) ([]domain.Action, error) {
	return s.workflow.AllowedActions(ctx, fileID, userID)
}

func (s *DefaultService) Levels(ctx context.Context, fileID, userID uint64) ([]domain.WorkflowLevel, error) {
	if _, err := s.visibleFile(ctx, fileID, userID); err != nil {
		return nil, err
	}

	v := s.cache.GetVersion(ctx, VersionKey(fileID))
	cacheKey := fmt.Sprintf("file:%d:v:%d:levels", fileID, v)

	var levels []domain.WorkflowLevel
	if found, _ := s.cache.Get(ctx, cacheKey, &levels); found {
		return levels, nil
	}

	levels, err := s.workflow.LevelsForFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	s.fill(cacheKey, levels)
	return levels, nil
}

func (s *DefaultService) AuditTrail(ctx context.Context, fileID, userID uint64, page, pageSize int) (*PaginatedAuditTrail, error) {
	if _, err := s.visibleFile(ctx, fileID, userID); err != nil {
		return nil, err
	}

	v := s.cache.GetVersion(ctx, VersionKey(fileID))
	cacheKey := fmt.Sprintf("file:%d:v:%d:audit:p:%d:ps:%d", fileID, v, page, pageSize)

	var result PaginatedAuditTrail
	if found, _ := s.cache.Get(ctx, cacheKey, &result); found {
		return &result, nil
	}

	entries, meta, err := s.repository.AuditTrail(ctx, fileID, page, pageSize)
	if err != nil {
		return nil, err
	}
	result = PaginatedAuditTrail{Data: entries, Meta: meta}
	s.fill(cacheKey, result)
	return &result, nil
}

func (s *DefaultService) Participants(ctx context.Context, fileID, userID uint64) ([]domain.WorkflowParticipant, error) {
	if _, err := s.visibleFile(ctx, fileID, userID); err != nil {
		return nil, err
	}
	return s.repository.Participants(ctx, fileID)
}

// fill writes value to the cache in the background.
func (s *DefaultService) fill(key string, value any) {
	if !s.cache.Enabled() {
		return
	}
	s.pool.Submit(func(ctx context.Context) error {
		return s.cache.Set(ctx, key, value, s.cacheTTL)
	})
}
