package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoBackupAvailable is returned by Rollback and BackupStore.Latest
	// when a module has no recorded history.
	ErrNoBackupAvailable = errors.New("no backup available")

	// ErrModuleNotFound is returned when a module does not exist in the store.
	ErrModuleNotFound = errors.New("module not found")

	// ErrPathOutsideStore is returned for module paths that are absolute,
	// escape the store or point into a hidden directory.
	ErrPathOutsideStore = errors.New("path outside module store")
)

// Backup is one snapshot of a module's bytes. Seq increases by one with
// every snapshot of the same module.
type Backup struct {
	ID        string    `json:"id"`
	Module    string    `json:"module"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
	Content   []byte    `json:"-"`
}

// BackupStore is an append-only log of module snapshots keyed by module
// path. Module paths use forward slashes.
type BackupStore interface {
	// Save appends a snapshot of content for module.
	Save(ctx context.Context, module string, content []byte, at time.Time) (Backup, error)
	// Latest returns the newest snapshot or ErrNoBackupAvailable.
	Latest(ctx context.Context, module string) (Backup, error)
	// List returns up to n snapshots, newest first. n <= 0 means all.
	List(ctx context.Context, module string, n int) ([]Backup, error)
	Close() error
}

// MemoryStore keeps snapshots in memory.
type MemoryStore struct {
	mu      sync.Mutex
	backups map[string][]Backup
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{backups: map[string][]Backup{}}
}

func (s *MemoryStore) Save(ctx context.Context, module string, content []byte, at time.Time) (Backup, error) {
	if err := ctx.Err(); err != nil {
		return Backup{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b := Backup{
		ID:        uuid.NewString(),
		Module:    module,
		Seq:       int64(len(s.backups[module]) + 1),
		CreatedAt: at.UTC(),
		Content:   append([]byte(nil), content...),
	}
	s.backups[module] = append(s.backups[module], b)
	return b, nil
}

func (s *MemoryStore) Latest(ctx context.Context, module string) (Backup, error) {
	list, err := s.List(ctx, module, 1)
	if err != nil {
		return Backup{}, err
	}
	if len(list) == 0 {
		return Backup{}, ErrNoBackupAvailable
	}
	return list[0], nil
}

func (s *MemoryStore) List(ctx context.Context, module string, n int) ([]Backup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.backups[module]
	out := make([]Backup, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if n > 0 && len(out) == n {
			break
		}
		b := all[i]
		b.Content = append([]byte(nil), b.Content...)
		out = append(out, b)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
