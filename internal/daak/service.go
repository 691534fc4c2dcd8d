package daak

import (
	"context"
	"fmt"
	"strings"
	"time"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"
	"file-lifecycle-manager/internal/file"
	"file-lifecycle-manager/internal/utils"
	"file-lifecycle-manager/internal/workflow"
	"file-lifecycle-manager/redis"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

type Service interface {
	Create(ctx context.Context, userID uint64, req CreateDaakRequest) (*domain.Daak, error)
	ListForDepartment(ctx context.Context, departmentID, userID uint64, direction domain.DaakDirection, page, pageSize int) (*PaginatedDaak, error)
	Link(ctx context.Context, req LinkRequest) (*domain.Daak, error)
}

type RoleLookup interface {
	RoleOf(ctx context.Context, userID, departmentID uint64) (workflow.Role, bool, error)
}

type CreateDaakRequest struct {
	Direction      string     `json:"direction" binding:"required,oneof=INWARD OUTWARD"`
	Subject        string     `json:"subject" binding:"required,max=255"`
	Correspondent  string     `json:"correspondent" binding:"required,max=255"`
	DepartmentID   uint64     `json:"department_id" binding:"required"`
	ReceivedOrSent *time.Time `json:"received_or_sent"`
}

type LinkRequest struct {
	DaakID   uint64
	FileID   uint64
	UserID   uint64
	ClientIP string
}

type PaginatedDaak struct {
	Data []domain.Daak `json:"data"`
	Meta utils.Meta    `json:"meta"`
}

type DefaultService struct {
	repository Repository
	roles      RoleLookup
	cache      *redis.Cache
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(repository Repository, roles RoleLookup, cache *redis.Cache, log zerolog.Logger) Service {
	return &DefaultService{
		repository: repository,
		roles:      roles,
		cache:      cache,
		log:        log.With().Str("component", "daak").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ReferenceNumber builds IN/2026/1A2B3C4D style numbers.
func ReferenceNumber(direction domain.DaakDirection, at time.Time) string {
	prefix := "IN"
	if direction == domain.DaakOutward {
		prefix = "OUT"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s/%d/%s", prefix, at.Year(), suffix)
}

func (s *DefaultService) roleIn(ctx context.Context, userID, departmentID uint64) (workflow.Role, error) {
	role, ok, err := s.roles.RoleOf(ctx, userID, departmentID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.Forbidden("You hold no role in this department", nil)
	}
	return role, nil
}

func (s *DefaultService) Create(ctx context.Context, userID uint64, req CreateDaakRequest) (*domain.Daak, error) {
	if _, err := s.roleIn(ctx, userID, req.DepartmentID); err != nil {
		return nil, err
	}

	now := s.now()
	at := now
	if req.ReceivedOrSent != nil {
		at = req.ReceivedOrSent.UTC()
	}

	direction := domain.DaakDirection(req.Direction)
	d := &domain.Daak{
		ReferenceNumber: ReferenceNumber(direction, at),
		Direction:       direction,
		Subject:         req.Subject,
		Correspondent:   req.Correspondent,
		DepartmentID:    req.DepartmentID,
		ReceivedOrSent:  at,
		CreatedByID:     userID,
	}
	if err := s.repository.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DefaultService) ListForDepartment(ctx context.Context, departmentID, userID uint64, direction domain.DaakDirection, page, pageSize int) (*PaginatedDaak, error) {
	if _, err := s.roleIn(ctx, userID, departmentID); err != nil {
		return nil, err
	}

	letters, meta, err := s.repository.ListForDepartment(ctx, departmentID, direction, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &PaginatedDaak{Data: letters, Meta: meta}, nil
}

// Link attaches a letter to a file of the same department and records a
// DAAK_LINKED audit entry on the file in the same transaction.
func (s *DefaultService) Link(ctx context.Context, req LinkRequest) (*domain.Daak, error) {
	var linked *domain.Daak

	err := s.repository.Transaction(ctx, func(repo Repository) error {
		f, err := repo.LockFile(ctx, req.FileID)
		if err != nil {
			return err
		}
		if f == nil {
			return errors.NotFound(fmt.Sprintf("File %d not found", req.FileID), nil)
		}
		if f.CurrentState == domain.StateArchived {
			return errors.Forbidden("File is archived, read-only", nil)
		}

		role, err := s.roleIn(ctx, req.UserID, f.DepartmentID)
		if err != nil {
			return err
		}

		d, err := repo.LockDaak(ctx, req.DaakID)
		if err != nil {
			return err
		}
		if d == nil {
			return errors.NotFound(fmt.Sprintf("Daak %d not found", req.DaakID), nil)
		}
		if d.DepartmentID != f.DepartmentID {
			return errors.Forbidden("Letter and file belong to different departments", nil)
		}
		if d.FileID != nil {
			return errors.Conflict(fmt.Sprintf("Daak %s is already linked to file %d", d.ReferenceNumber, *d.FileID), nil)
		}

		if err := repo.SetFile(ctx, d.ID, f.ID); err != nil {
			return err
		}

		entry := &domain.AuditTrailEntry{
			FileID:        f.ID,
			Action:        domain.ActionDaakLinked,
			PerformedByID: req.UserID,
			PerformedAt:   s.now(),
			Details:       fmt.Sprintf("%s daak %s linked", strings.ToLower(string(d.Direction)), d.ReferenceNumber),
			Metadata: datatypes.NewJSONType(domain.AuditMetadata{
				FromState:       f.CurrentState,
				ToState:         f.CurrentState,
				FromLevel:       f.CurrentLevel,
				ToLevel:         f.CurrentLevel,
				PerformedByRole: role.String(),
				DaakID:          d.ID,
			}),
		}
		if req.ClientIP != "" {
			ip := req.ClientIP
			entry.IPAddress = &ip
		}
		if err := repo.InsertAudit(ctx, entry); err != nil {
			return err
		}

		fileID := f.ID
		d.FileID = &fileID
		linked = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.IncrementVersion(ctx, file.VersionKey(req.FileID))
	s.log.Info().
		Uint64("daak_id", linked.ID).
		Uint64("file_id", req.FileID).
		Msg("daak linked to file")

	return linked, nil
}
