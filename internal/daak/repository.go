package daak

import (
	"context"
	defError "errors"

	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository stores register entries. The Lock* methods only lock inside
// Transaction. Finders return (nil, nil) for a missing row.
type Repository interface {
	Create(ctx context.Context, d *domain.Daak) error
	FindByID(ctx context.Context, id uint64) (*domain.Daak, error)
	ListForDepartment(ctx context.Context, departmentID uint64, direction domain.DaakDirection, page, pageSize int) ([]domain.Daak, utils.Meta, error)
	LockFile(ctx context.Context, fileID uint64) (*domain.File, error)
	LockDaak(ctx context.Context, id uint64) (*domain.Daak, error)
	SetFile(ctx context.Context, daakID, fileID uint64) error
	InsertAudit(ctx context.Context, entry *domain.AuditTrailEntry) error
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RepositoryImpl{db: tx})
	})
}

func (r *RepositoryImpl) Create(ctx context.Context, d *domain.Daak) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Daak, error) {
	var d domain.Daak
	return orNil(&d, r.db.WithContext(ctx).First(&d, id).Error)
}

func (r *RepositoryImpl) ListForDepartment(ctx context.Context, departmentID uint64, direction domain.DaakDirection, page, pageSize int) ([]domain.Daak, utils.Meta, error) {
	query := r.db.WithContext(ctx).Model(&domain.Daak{}).Where("department_id = ?", departmentID)
	if direction != "" {
		query = query.Where("direction = ?", direction)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, utils.Meta{}, err
	}

	letters := []domain.Daak{}
	err := query.
		Order("received_or_sent DESC").
		Order("id DESC").
		Offset(utils.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&letters).Error
	if err != nil {
		return nil, utils.Meta{}, err
	}
	return letters, utils.NewMeta(total, page, pageSize), nil
}

func (r *RepositoryImpl) LockFile(ctx context.Context, fileID uint64) (*domain.File, error) {
	var f domain.File
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&f, fileID).Error
	return orNil(&f, err)
}

func (r *RepositoryImpl) LockDaak(ctx context.Context, id uint64) (*domain.Daak, error) {
	var d domain.Daak
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, id).Error
	return orNil(&d, err)
}

func (r *RepositoryImpl) SetFile(ctx context.Context, daakID, fileID uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Daak{}).
		Where("id = ?", daakID).
		Update("file_id", fileID).Error
}

func (r *RepositoryImpl) InsertAudit(ctx context.Context, entry *domain.AuditTrailEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func orNil[T any](row *T, err error) (*T, error) {
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
