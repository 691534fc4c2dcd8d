package file

import (
	"context"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/utils"

	"gorm.io/gorm"
)

// Repository is the read side of files. Writes go through the workflow engine.
type Repository interface {
	FindByID(ctx context.Context, id uint64) (*domain.File, error)
	ListForDepartment(ctx context.Context, departmentID uint64, state domain.FileState, page, pageSize int) ([]domain.File, utils.Meta, error)
	AuditTrail(ctx context.Context, fileID uint64, page, pageSize int) ([]domain.AuditTrailEntry, utils.Meta, error)
	Participants(ctx context.Context, fileID uint64) ([]domain.WorkflowParticipant, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.File, error) {
	var f domain.File
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *RepositoryImpl) ListForDepartment(ctx context.Context, departmentID uint64, state domain.FileState, page, pageSize int) ([]domain.File, utils.Meta, error) {
	query := r.db.WithContext(ctx).Model(&domain.File{}).Where("department_id = ?", departmentID)
	if state != "" {
		query = query.Where("current_state = ?", state)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, utils.Meta{}, err
	}

	files := []domain.File{}
	err := query.
		Order("updated_at DESC").
		Order("id DESC").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&files).Error
	if err != nil {
		return nil, utils.Meta{}, err
	}

	return files, utils.NewMeta(total, page, pageSize), nil
}

// AuditTrail pages the file's audit entries oldest first.
func (r *RepositoryImpl) AuditTrail(ctx context.Context, fileID uint64, page, pageSize int) ([]domain.AuditTrailEntry, utils.Meta, error) {
	query := r.db.WithContext(ctx).Model(&domain.AuditTrailEntry{}).Where("file_id = ?", fileID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, utils.Meta{}, err
	}

	entries := []domain.AuditTrailEntry{}
	err := query.
		Order("performed_at ASC").
		Order("id ASC").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, utils.Meta{}, err
	}

	return entries, utils.NewMeta(total, page, pageSize), nil
}

func (r *RepositoryImpl) Participants(ctx context.Context, fileID uint64) ([]domain.WorkflowParticipant, error) {
	participants := []domain.WorkflowParticipant{}
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("acted_at ASC").
		Order("id ASC").
		Find(&participants).Error
	return participants, err
}
