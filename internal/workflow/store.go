package workflow

import (
	"context"

	"file-lifecycle-manager/internal/domain"
)

// Reader is the read side shared by transactions and query helpers.
// Finders return (nil, nil) when the row does not exist.
type Reader interface {
	FindFile(ctx context.Context, fileID uint64) (*domain.File, error)
	FindLevel(ctx context.Context, fileID uint64, level int) (*domain.WorkflowLevel, error)
	ListLevels(ctx context.Context, fileID uint64) ([]domain.WorkflowLevel, error)
	RoleOf(ctx context.Context, userID, departmentID uint64) (Role, bool, error)
}

// Tx is a unit of work. Nothing written through a Tx is visible to others
// until the enclosing WithinTransaction returns nil.
type Tx interface {
	Reader

	// LockFile reads the file row holding an exclusive lock until the
	// transaction ends.
	LockFile(ctx context.Context, fileID uint64) (*domain.File, error)
	CreateFile(ctx context.Context, file *domain.File) error
	UpdateFilePosition(ctx context.Context, fileID uint64, state domain.FileState, level int) error

	// FirstActiveLevel and NextActiveLevel skip SKIPPED rows.
	FirstActiveLevel(ctx context.Context, fileID uint64) (*domain.WorkflowLevel, error)
	NextActiveLevel(ctx context.Context, fileID uint64, after int) (*domain.WorkflowLevel, error)

	InsertLevels(ctx context.Context, levels []domain.WorkflowLevel) error
	SaveLevel(ctx context.Context, level *domain.WorkflowLevel) error
	InsertParticipant(ctx context.Context, p *domain.WorkflowParticipant) error
	InsertAudit(ctx context.Context, entries ...*domain.AuditTrailEntry) error
}

// Store runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
type Store interface {
	Reader
	WithinTransaction(ctx context.Context, fn func(tx Tx) error) error
}
