package workflow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"file-lifecycle-manager/internal/domain"
)

// memStore is a transactional in-memory Store. A transaction works on a copy
// of the state which replaces the committed state only when fn returns nil.
// The mutex serializes transactions the way the file row lock does.
type memStore struct {
	mu     sync.Mutex
	state  *memState
	failOn string
}

type memState struct {
	nextID       uint64
	files        map[uint64]domain.File
	levels       map[uint64][]domain.WorkflowLevel
	roles        map[[2]uint64]Role
	participants []domain.WorkflowParticipant
	audits       []domain.AuditTrailEntry
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		nextID: 100,
		files:  map[uint64]domain.File{},
		levels: map[uint64][]domain.WorkflowLevel{},
		roles:  map[[2]uint64]Role{},
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		nextID:       s.nextID,
		files:        make(map[uint64]domain.File, len(s.files)),
		levels:       make(map[uint64][]domain.WorkflowLevel, len(s.levels)),
		roles:        make(map[[2]uint64]Role, len(s.roles)),
		participants: append([]domain.WorkflowParticipant(nil), s.participants...),
		audits:       append([]domain.AuditTrailEntry(nil), s.audits...),
	}
	for k, v := range s.files {
		c.files[k] = v
	}
	for k, v := range s.levels {
		c.levels[k] = append([]domain.WorkflowLevel(nil), v...)
	}
	for k, v := range s.roles {
		c.roles[k] = v
	}
	return c
}

func (s *memStore) setRole(userID, departmentID uint64, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.roles[[2]uint64{userID, departmentID}] = role
}

func (s *memStore) snapshot() *memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *memStore) WithinTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&memTx{st: work, failOn: s.failOn}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *memStore) FindFile(ctx context.Context, fileID uint64) (*domain.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memTx{st: s.state}).FindFile(ctx, fileID)
}

func (s *memStore) FindLevel(ctx context.Context, fileID uint64, level int) (*domain.WorkflowLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memTx{st: s.state}).FindLevel(ctx, fileID, level)
}

func (s *memStore) ListLevels(ctx context.Context, fileID uint64) ([]domain.WorkflowLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memTx{st: s.state}).ListLevels(ctx, fileID)
}

func (s *memStore) RoleOf(ctx context.Context, userID, departmentID uint64) (Role, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memTx{st: s.state}).RoleOf(ctx, userID, departmentID)
}

type memTx struct {
	st     *memState
	failOn string
}

func (t *memTx) fail(op string) error {
	if t.failOn == op {
		return fmt.Errorf("injected failure in %s", op)
	}
	return nil
}

func (t *memTx) id() uint64 {
	t.st.nextID++
	return t.st.nextID
}

func (t *memTx) FindFile(_ context.Context, fileID uint64) (*domain.File, error) {
	f, ok := t.st.files[fileID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (t *memTx) FindLevel(_ context.Context, fileID uint64, level int) (*domain.WorkflowLevel, error) {
	for _, l := range t.st.levels[fileID] {
		if l.Level == level {
			lvl := l
			return &lvl, nil
		}
	}
	return nil, nil
}

func (t *memTx) ListLevels(_ context.Context, fileID uint64) ([]domain.WorkflowLevel, error) {
	out := append([]domain.WorkflowLevel(nil), t.st.levels[fileID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (t *memTx) RoleOf(_ context.Context, userID, departmentID uint64) (Role, bool, error) {
	r, ok := t.st.roles[[2]uint64{userID, departmentID}]
	return r, ok, nil
}

func (t *memTx) LockFile(ctx context.Context, fileID uint64) (*domain.File, error) {
	return t.FindFile(ctx, fileID)
}

func (t *memTx) CreateFile(_ context.Context, file *domain.File) error {
	if err := t.fail("CreateFile"); err != nil {
		return err
	}
	file.ID = t.id()
	file.CreatedAt = time.Now().UTC()
	file.UpdatedAt = file.CreatedAt
	t.st.files[file.ID] = *file
	return nil
}

func (t *memTx) UpdateFilePosition(_ context.Context, fileID uint64, state domain.FileState, level int) error {
	if err := t.fail("UpdateFilePosition"); err != nil {
		return err
	}
	f := t.st.files[fileID]
	f.CurrentState = state
	f.CurrentLevel = level
	t.st.files[fileID] = f
	return nil
}

func (t *memTx) FirstActiveLevel(ctx context.Context, fileID uint64) (*domain.WorkflowLevel, error) {
	return t.NextActiveLevel(ctx, fileID, 0)
}

func (t *memTx) NextActiveLevel(ctx context.Context, fileID uint64, after int) (*domain.WorkflowLevel, error) {
	levels, _ := t.ListLevels(ctx, fileID)
	for _, l := range levels {
		if l.Level > after && l.Status != domain.LevelSkipped {
			lvl := l
			return &lvl, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertLevels(_ context.Context, levels []domain.WorkflowLevel) error {
	if err := t.fail("InsertLevels"); err != nil {
		return err
	}
	for i := range levels {
		levels[i].ID = t.id()
		t.st.levels[levels[i].FileID] = append(t.st.levels[levels[i].FileID], levels[i])
	}
	return nil
}

func (t *memTx) SaveLevel(_ context.Context, level *domain.WorkflowLevel) error {
	if err := t.fail("SaveLevel"); err != nil {
		return err
	}
	rows := t.st.levels[level.FileID]
	for i := range rows {
		if rows[i].Level == level.Level {
			rows[i] = *level
			return nil
		}
	}
	return fmt.Errorf("level %d of file %d not found", level.Level, level.FileID)
}

func (t *memTx) InsertParticipant(_ context.Context, p *domain.WorkflowParticipant) error {
	if err := t.fail("InsertParticipant"); err != nil {
		return err
	}
	p.ID = t.id()
	t.st.participants = append(t.st.participants, *p)
	return nil
}

func (t *memTx) InsertAudit(_ context.Context, entries ...*domain.AuditTrailEntry) error {
	if err := t.fail("InsertAudit"); err != nil {
		return err
	}
	for _, e := range entries {
		e.ID = t.id()
		t.st.audits = append(t.st.audits, *e)
	}
	return nil
}

func (s *memState) auditsFor(fileID uint64) []domain.AuditTrailEntry {
	var out []domain.AuditTrailEntry
	for _, a := range s.audits {
		if a.FileID == fileID {
			out = append(out, a)
		}
	}
	return out
}

func (s *memState) participantsFor(fileID uint64) []domain.WorkflowParticipant {
	var out []domain.WorkflowParticipant
	for _, p := range s.participants {
		if p.FileID == fileID {
			out = append(out, p)
		}
	}
	return out
}

func (s *memState) levelStatus(fileID uint64, level int) domain.LevelStatus {
	for _, l := range s.levels[fileID] {
		if l.Level == level {
			return l.Status
		}
	}
	return ""
}

func (s *memState) activeCount(fileID uint64) int {
	n := 0
	for _, l := range s.levels[fileID] {
		if l.Status == domain.LevelActive {
			n++
		}
	}
	return n
}
