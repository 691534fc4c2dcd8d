package daak

import (
	"context"
	"regexp"
	"testing"
	"time"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
	"file-lifecycle-manager/internal/file"
	"file-lifecycle-manager/internal/utils"
	"file-lifecycle-manager/internal/workflow"
	"file-lifecycle-manager/redis"

	"github.com/alicebob/miniredis/v2"
	redisLib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, d *domain.Daak) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Daak, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Daak), args.Error(1)
}

func (m *MockRepository) ListForDepartment(ctx context.Context, departmentID uint64, direction domain.DaakDirection, page, pageSize int) ([]domain.Daak, utils.Meta, error) {
	args := m.Called(ctx, departmentID, direction, page, pageSize)
	return args.Get(0).([]domain.Daak), args.Get(1).(utils.Meta), args.Error(2)
}

func (m *MockRepository) LockFile(ctx context.Context, fileID uint64) (*domain.File, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockRepository) LockDaak(ctx context.Context, id uint64) (*domain.Daak, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Daak), args.Error(1)
}

func (m *MockRepository) SetFile(ctx context.Context, daakID, fileID uint64) error {
	return m.Called(ctx, daakID, fileID).Error(0)
}

func (m *MockRepository) InsertAudit(ctx context.Context, entry *domain.AuditTrailEntry) error {
	return m.Called(ctx, entry).Error(0)
}

// Transaction runs fn against the mock itself.
func (m *MockRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(m)
}

type MockRoles struct {
	mock.Mock
}

func (m *MockRoles) RoleOf(ctx context.Context, userID, departmentID uint64) (workflow.Role, bool, error) {
	args := m.Called(ctx, userID, departmentID)
	return args.Get(0).(workflow.Role), args.Bool(1), args.Error(2)
}

func newTestService(t *testing.T) (*DefaultService, *MockRepository, *redis.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisLib.NewClient(&redisLib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := new(MockRepository)
	roles := new(MockRoles)
	roles.On("RoleOf", mock.Anything, uint64(1), uint64(10)).Return(workflow.RoleClerk, true, nil)
	roles.On("RoleOf", mock.Anything, uint64(7), uint64(10)).Return(workflow.Role(""), false, nil)

	cache := redis.NewCache(client)
	svc := NewService(repo, roles, cache, zerolog.Nop()).(*DefaultService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo, cache
}

func TestReferenceNumber(t *testing.T) {
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	in := ReferenceNumber(domain.DaakInward, at)
	out := ReferenceNumber(domain.DaakOutward, at)

	assert.Regexp(t, regexp.MustCompile(`^IN/2026/[0-9A-F]{8}$`), in)
	assert.Regexp(t, regexp.MustCompile(`^OUT/2026/[0-9A-F]{8}$`), out)
	assert.NotEqual(t, in, ReferenceNumber(domain.DaakInward, at))
}

func TestService_Create(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(d *domain.Daak) bool {
		return d.Direction == domain.DaakInward && d.CreatedByID == 1 && d.ReceivedOrSent.Year() == 2026
	})).Return(nil)

	d, err := svc.Create(ctx, 1, CreateDaakRequest{Direction: "INWARD", Subject: "Budget query", Correspondent: "Finance", DepartmentID: 10})
	require.NoError(t, err)
	assert.Contains(t, d.ReferenceNumber, "IN/2026/")

	_, err = svc.Create(ctx, 7, CreateDaakRequest{Direction: "INWARD", Subject: "x", Correspondent: "y", DepartmentID: 10})
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestService_Link(t *testing.T) {
	svc, repo, cache := newTestService(t)
	ctx := context.Background()

	repo.On("LockFile", ctx, uint64(100)).
		Return(&domain.File{ID: 100, DepartmentID: 10, CurrentState: domain.StateInReview, CurrentLevel: 2}, nil)
	repo.On("LockDaak", ctx, uint64(5)).
		Return(&domain.Daak{ID: 5, ReferenceNumber: "IN/2026/AAAA0000", Direction: domain.DaakInward, DepartmentID: 10}, nil)
	repo.On("SetFile", ctx, uint64(5), uint64(100)).Return(nil)
	repo.On("InsertAudit", ctx, mock.MatchedBy(func(e *domain.AuditTrailEntry) bool {
		md := e.Metadata.Data()
		return e.Action == domain.ActionDaakLinked && e.FileID == 100 &&
			md.DaakID == 5 && md.FromState == domain.StateInReview && md.ToLevel == 2 &&
			md.PerformedByRole == "Clerk" && e.IPAddress != nil && *e.IPAddress == "10.0.0.1"
	})).Return(nil)

	d, err := svc.Link(ctx, LinkRequest{DaakID: 5, FileID: 100, UserID: 1, ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	require.NotNil(t, d.FileID)
	assert.Equal(t, uint64(100), *d.FileID)
	assert.Equal(t, int64(1), cache.GetVersion(ctx, file.VersionKey(100)))
	repo.AssertExpectations(t)
}

func TestService_LinkRefusals(t *testing.T) {
	svc, repo, cache := newTestService(t)
	ctx := context.Background()

	linkedTo := uint64(101)
	repo.On("LockFile", ctx, uint64(100)).Return(&domain.File{ID: 100, DepartmentID: 10, CurrentState: domain.StateDraft}, nil)
	repo.On("LockFile", ctx, uint64(200)).Return(&domain.File{ID: 200, DepartmentID: 10, CurrentState: domain.StateArchived}, nil)
	repo.On("LockFile", ctx, uint64(404)).Return(nil, nil)
	repo.On("LockDaak", ctx, uint64(6)).Return(&domain.Daak{ID: 6, DepartmentID: 11}, nil)
	repo.On("LockDaak", ctx, uint64(7)).Return(&domain.Daak{ID: 7, DepartmentID: 10, FileID: &linkedTo}, nil)
	repo.On("LockDaak", ctx, uint64(404)).Return(nil, nil)

	tests := []struct {
		name string
		req  LinkRequest
		code string
	}{
		{"archived file", LinkRequest{DaakID: 6, FileID: 200, UserID: 1}, errors.CodeForbidden},
		{"missing file", LinkRequest{DaakID: 6, FileID: 404, UserID: 1}, errors.CodeNotFound},
		{"no department role", LinkRequest{DaakID: 6, FileID: 100, UserID: 7}, errors.CodeForbidden},
		{"missing daak", LinkRequest{DaakID: 404, FileID: 100, UserID: 1}, errors.CodeNotFound},
		{"other department", LinkRequest{DaakID: 6, FileID: 100, UserID: 1}, errors.CodeForbidden},
		{"already linked", LinkRequest{DaakID: 7, FileID: 100, UserID: 1}, errors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Link(ctx, tt.req)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}

	repo.AssertNotCalled(t, "SetFile", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "InsertAudit", mock.Anything, mock.Anything)
	assert.Equal(t, int64(0), cache.GetVersion(ctx, file.VersionKey(100)))
}

func TestService_ListForDepartment(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("ListForDepartment", ctx, uint64(10), domain.DaakOutward, 1, 10).
		Return([]domain.Daak{{ID: 1}}, utils.NewMeta(1, 1, 10), nil)

	result, err := svc.ListForDepartment(ctx, 10, 1, domain.DaakOutward, 1, 10)
	require.NoError(t, err)
	assert.Len(t, result.Data, 1)

	_, err = svc.ListForDepartment(ctx, 10, 7, "", 1, 10)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}
