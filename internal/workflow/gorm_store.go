package workflow

import (
	"context"
	defError "errors"
	"time"

	"file-lifecycle-manager/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the relational Store. Row locks come from SELECT ... FOR UPDATE
// and are released when the gorm transaction commits or rolls back.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func (s *GormStore) FindFile(ctx context.Context, fileID uint64) (*domain.File, error) {
	return findFile(s.db.WithContext(ctx), fileID)
}

func (s *GormStore) FindLevel(ctx context.Context, fileID uint64, level int) (*domain.WorkflowLevel, error) {
	return findLevel(s.db.WithContext(ctx), fileID, level)
}

func (s *GormStore) ListLevels(ctx context.Context, fileID uint64) ([]domain.WorkflowLevel, error) {
	return listLevels(s.db.WithContext(ctx), fileID)
}

func (s *GormStore) RoleOf(ctx context.Context, userID, departmentID uint64) (Role, bool, error) {
	return roleOf(s.db.WithContext(ctx), userID, departmentID)
}

// NewGormTx wraps an already open gorm transaction, so callers that own the
// transaction can run engine steps inside it.
func NewGormTx(tx *gorm.DB) Tx {
	return &gormTx{db: tx}
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) FindFile(ctx context.Context, fileID uint64) (*domain.File, error) {
	return findFile(t.db.WithContext(ctx), fileID)
}

func (t *gormTx) FindLevel(ctx context.Context, fileID uint64, level int) (*domain.WorkflowLevel, error) {
	return findLevel(t.db.WithContext(ctx), fileID, level)
}

func (t *gormTx) ListLevels(ctx context.Context, fileID uint64) ([]domain.WorkflowLevel, error) {
	return listLevels(t.db.WithContext(ctx), fileID)
}

func (t *gormTx) RoleOf(ctx context.Context, userID, departmentID uint64) (Role, bool, error) {
	return roleOf(t.db.WithContext(ctx), userID, departmentID)
}

func (t *gormTx) LockFile(ctx context.Context, fileID uint64) (*domain.File, error) {
	return findFile(t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), fileID)
}

func (t *gormTx) CreateFile(ctx context.Context, file *domain.File) error {
	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now
	return t.db.WithContext(ctx).Create(file).Error
}

func (t *gormTx) UpdateFilePosition(ctx context.Context, fileID uint64, state domain.FileState, level int) error {
	return t.db.WithContext(ctx).
		Model(&domain.File{}).
		Where("id = ?", fileID).
		Updates(map[string]interface{}{
			"current_state": state,
			"current_level": level,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (t *gormTx) FirstActiveLevel(ctx context.Context, fileID uint64) (*domain.WorkflowLevel, error) {
	var lvl domain.WorkflowLevel
	err := t.db.WithContext(ctx).
		Where("file_id = ? AND status <> ?", fileID, domain.LevelSkipped).
		Order("level ASC").
		First(&lvl).Error
	return levelOrNil(&lvl, err)
}

func (t *gormTx) NextActiveLevel(ctx context.Context, fileID uint64, after int) (*domain.WorkflowLevel, error) {
	var lvl domain.WorkflowLevel
	err := t.db.WithContext(ctx).
		Where("file_id = ? AND level > ? AND status <> ?", fileID, after, domain.LevelSkipped).
		Order("level ASC").
		First(&lvl).Error
	return levelOrNil(&lvl, err)
}

func (t *gormTx) InsertLevels(ctx context.Context, levels []domain.WorkflowLevel) error {
	if len(levels) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).Create(&levels).Error
}

func (t *gormTx) SaveLevel(ctx context.Context, level *domain.WorkflowLevel) error {
	return t.db.WithContext(ctx).Save(level).Error
}

func (t *gormTx) InsertParticipant(ctx context.Context, p *domain.WorkflowParticipant) error {
	return t.db.WithContext(ctx).Create(p).Error
}

func (t *gormTx) InsertAudit(ctx context.Context, entries ...*domain.AuditTrailEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).Create(entries).Error
}

func findFile(db *gorm.DB, fileID uint64) (*domain.File, error) {
	var file domain.File
	err := db.First(&file, fileID).Error
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func findLevel(db *gorm.DB, fileID uint64, level int) (*domain.WorkflowLevel, error) {
	var lvl domain.WorkflowLevel
	err := db.Where("file_id = ? AND level = ?", fileID, level).First(&lvl).Error
	return levelOrNil(&lvl, err)
}

func listLevels(db *gorm.DB, fileID uint64) ([]domain.WorkflowLevel, error) {
	var levels []domain.WorkflowLevel
	err := db.Where("file_id = ?", fileID).Order("level ASC").Find(&levels).Error
	return levels, err
}

func roleOf(db *gorm.DB, userID, departmentID uint64) (Role, bool, error) {
	var udr domain.UserDepartmentRole
	err := db.Where("user_id = ? AND department_id = ?", userID, departmentID).First(&udr).Error
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return Role(udr.Role), true, nil
}

func levelOrNil(lvl *domain.WorkflowLevel, err error) (*domain.WorkflowLevel, error) {
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lvl, nil
}
