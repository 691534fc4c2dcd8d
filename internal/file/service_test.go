package file

import (
	"context"
	"testing"
	"time"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
	"file-lifecycle-manager/internal/utils"
	"file-lifecycle-manager/internal/worker"
	"file-lifecycle-manager/internal/workflow"
	"file-lifecycle-manager/redis"

	"github.com/alicebob/miniredis/v2"
	redisLib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockRepository) ListForDepartment(ctx context.Context, departmentID uint64, state domain.FileState, page, pageSize int) ([]domain.File, utils.Meta, error) {
	args := m.Called(ctx, departmentID, state, page, pageSize)
	return args.Get(0).([]domain.File), args.Get(1).(utils.Meta), args.Error(2)
}

func (m *MockRepository) AuditTrail(ctx context.Context, fileID uint64, page, pageSize int) ([]domain.AuditTrailEntry, utils.Meta, error) {
	args := m.Called(ctx, fileID, page, pageSize)
	return args.Get(0).([]domain.AuditTrailEntry), args.Get(1).(utils.Meta), args.Error(2)
}

func (m *MockRepository) Participants(ctx context.Context, fileID uint64) ([]domain.WorkflowParticipant, error) {
	args := m.Called(ctx, fileID)
	return args.Get(0).([]domain.WorkflowParticipant), args.Error(1)
}

type MockWorkflow struct {
	mock.Mock
}

func (m *MockWorkflow) CreateFileWithWorkflow(ctx context.Context, f *domain.File, levels []workflow.TemplateLevel, creatorRole workflow.Role) (*workflow.Instance, error) {
	args := m.Called(ctx, f, levels, creatorRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Instance), args.Error(1)
}

func (m *MockWorkflow) ExecuteAction(ctx context.Context, req workflow.ActionRequest) (*domain.File, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockWorkflow) AllowedActions(ctx context.Context, fileID, userID uint64) ([]domain.Action, error) {
	args := m.Called(ctx, fileID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Action), args.Error(1)
}

func (m *MockWorkflow) LevelsForFile(ctx context.Context, fileID uint64) ([]domain.WorkflowLevel, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkflowLevel), args.Error(1)
}

type MockRoles struct {
	mock.Mock
}

func (m *MockRoles) RoleOf(ctx context.Context, userID, departmentID uint64) (workflow.Role, bool, error) {
	args := m.Called(ctx, userID, departmentID)
	return args.Get(0).(workflow.Role), args.Bool(1), args.Error(2)
}

type MockTemplates struct {
	mock.Mock
}

func (m *MockTemplates) Resolve(ctx context.Context, departmentID uint64, fileType string) ([]workflow.TemplateLevel, error) {
	args := m.Called(ctx, departmentID, fileType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]workflow.TemplateLevel), args.Error(1)
}

type fixture struct {
	repo      *MockRepository
	wf        *MockWorkflow
	roles     *MockRoles
	templates *MockTemplates
	cache     *redis.Cache
	pool      *worker.WorkerPool
	svc       Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisLib.NewClient(&redisLib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		repo:      new(MockRepository),
		wf:        new(MockWorkflow),
		roles:     new(MockRoles),
		templates: new(MockTemplates),
		cache:     redis.NewCache(client),
		pool:      worker.NewWorkerPool(1, zerolog.Nop()),
	}
	t.Cleanup(f.pool.Shutdown)
	f.svc = NewService(f.repo, f.wf, f.roles, f.templates, f.cache, f.pool, time.Minute, zerolog.Nop())

	f.roles.On("RoleOf", mock.Anything, uint64(1), uint64(10)).Return(workflow.RoleClerk, true, nil)
	f.roles.On("RoleOf", mock.Anything, uint64(7), uint64(10)).Return(workflow.Role(""), false, nil)
	f.repo.On("FindByID", mock.Anything, uint64(100)).
		Return(&domain.File{ID: 100, DepartmentID: 10, CurrentState: domain.StateDraft}, nil)
	f.repo.On("FindByID", mock.Anything, uint64(404)).Return(nil, gorm.ErrRecordNotFound)
	return f
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	levels := []workflow.TemplateLevel{{Level: 1, Role: workflow.RoleClerk}, {Level: 2, Role: workflow.RoleUnderSecretary}}
	f.templates.On("Resolve", ctx, uint64(10), "BUDGET").Return(levels, nil)
	f.wf.On("CreateFileWithWorkflow", ctx, mock.MatchedBy(func(file *domain.File) bool {
		return file.CreatedByID == 1 && file.DepartmentID == 10 && file.FileNumber == "F-1"
	}), levels, workflow.RoleClerk).Return(&workflow.Instance{
		Levels: []domain.WorkflowLevel{
			{Level: 1, Status: domain.LevelSkipped},
			{Level: 2, Status: domain.LevelPending},
		},
		FirstActiveLevel: 2,
	}, nil)

	resp, err := f.svc.Create(ctx, 1, CreateFileRequest{FileNumber: "F-1", Subject: "Budget", FileType: "BUDGET", DepartmentID: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.FirstActiveLevel)
	assert.Len(t, resp.Levels, 2)
	f.wf.AssertExpectations(t)
}

func TestService_CreateWithoutDepartmentRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), 7, CreateFileRequest{FileNumber: "F-1", Subject: "x", DepartmentID: 10})
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
	f.wf.AssertNotCalled(t, "CreateFileWithWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.Get(ctx, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.ID)

	_, err = f.svc.Get(ctx, 100, 7)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	_, err = f.svc.Get(ctx, 404, 1)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestService_LevelsCachedUntilAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	levels := []domain.WorkflowLevel{{FileID: 100, Level: 1, Status: domain.LevelActive, RoleRequired: "Clerk"}}
	f.wf.On("LevelsForFile", ctx, uint64(100)).Return(levels, nil)

	first, err := f.svc.Levels(ctx, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, levels, first)

	// drain the background cache fill
	f.pool.Shutdown()

	second, err := f.svc.Levels(ctx, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, levels[0].Status, second[0].Status)
	f.wf.AssertNumberOfCalls(t, "LevelsForFile", 1)

	req := workflow.ActionRequest{FileID: 100, UserID: 1, Action: domain.ActionApprove}
	f.wf.On("ExecuteAction", ctx, req).Return(&domain.File{ID: 100, CurrentState: domain.StateApproved}, nil)
	_, err = f.svc.ExecuteAction(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.cache.GetVersion(ctx, VersionKey(100)))

	_, err = f.svc.Levels(ctx, 100, 1)
	require.NoError(t, err)
	f.wf.AssertNumberOfCalls(t, "LevelsForFile", 2)
}

func TestService_ExecuteActionErrorKeepsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := workflow.ActionRequest{FileID: 100, UserID: 1, Action: domain.ActionApprove}
	f.wf.On("ExecuteAction", ctx, req).Return(nil, errors.InvalidTransition("APPROVE", "DRAFT"))

	_, err := f.svc.ExecuteAction(ctx, req)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidTransition))
	assert.Equal(t, int64(0), f.cache.GetVersion(ctx, VersionKey(100)))
}

func TestService_AuditTrailCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entries := []domain.AuditTrailEntry{{ID: 1, FileID: 100, Action: domain.ActionSubmit, Details: "Submitted for review at Level 1"}}
	f.repo.On("AuditTrail", ctx, uint64(100), 1, 10).Return(entries, utils.NewMeta(1, 1, 10), nil)

	first, err := f.svc.AuditTrail(ctx, 100, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Meta.Total)

	f.pool.Shutdown()

	second, err := f.svc.AuditTrail(ctx, 100, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "Submitted for review at Level 1", second.Data[0].Details)
	f.repo.AssertNumberOfCalls(t, "AuditTrail", 1)

	_, err = f.svc.AuditTrail(ctx, 100, 7, 1, 10)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}

func TestService_ListForDepartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("ListForDepartment", ctx, uint64(10), domain.StateInReview, 1, 10).
		Return([]domain.File{{ID: 100}}, utils.NewMeta(1, 1, 10), nil)

	result, err := f.svc.ListForDepartment(ctx, 10, 1, domain.StateInReview, 1, 10)
	require.NoError(t, err)
	assert.Len(t, result.Data, 1)

	_, err = f.svc.ListForDepartment(ctx, 10, 7, "", 1, 10)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}

func TestService_Participants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("Participants", ctx, uint64(100)).
		Return([]domain.WorkflowParticipant{{FileID: 100, Action: domain.ActionApprove}}, nil)

	got, err := f.svc.Participants(ctx, 100, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
