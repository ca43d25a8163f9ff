package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	backupExt      = ".bak"
	backupTSLayout = "20060102T150405.000000000Z"
)

// FileStore keeps snapshots as files under dir, one directory per module:
//
//	<dir>/skills/qc.py/000002-20260213T120000.123456789Z-<uuid>.bak
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created
// on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) moduleDir(module string) string {
	return filepath.Join(s.dir, filepath.FromSlash(module))
}

func (s *FileStore) Save(ctx context.Context, module string, content []byte, at time.Time) (Backup, error) {
	if err := ctx.Err(); err != nil {
		return Backup{}, err
	}
	existing, err := s.scan(module)
	if err != nil {
		return Backup{}, err
	}

	b := Backup{
		ID:        uuid.NewString(),
		Module:    module,
		Seq:       1,
		CreatedAt: at.UTC(),
		Content:   append([]byte(nil), content...),
	}
	if len(existing) > 0 {
		b.Seq = existing[0].Seq + 1
	}

	name := fmt.Sprintf("%06d-%s-%s%s", b.Seq, b.CreatedAt.Format(backupTSLayout), b.ID, backupExt)
	if err := writeFileAtomic(filepath.Join(s.moduleDir(module), name), content); err != nil {
		return Backup{}, fmt.Errorf("failed to write backup: %w", err)
	}
	return b, nil
}

func (s *FileStore) Latest(ctx context.Context, module string) (Backup, error) {
	list, err := s.List(ctx, module, 1)
	if err != nil {
		return Backup{}, err
	}
	if len(list) == 0 {
		return Backup{}, ErrNoBackupAvailable
	}
	return list[0], nil
}

func (s *FileStore) List(ctx context.Context, module string, n int) ([]Backup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := s.scan(module)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		data, err := os.ReadFile(entries[i].file)
		if err != nil {
			return nil, fmt.Errorf("failed to read backup: %w", err)
		}
		entries[i].Content = data
	}

	out := make([]Backup, len(entries))
	for i, e := range entries {
		out[i] = e.Backup
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }

type fileEntry struct {
	Backup
	file string
}

// scan lists snapshot files of module, newest first, without content.
func (s *FileStore) scan(module string) ([]fileEntry, error) {
	dir := s.moduleDir(module)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []fileEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), backupExt) {
			continue
		}
		b, ok := parseBackupName(entry.Name())
		if !ok {
			continue // Skip files not written by FileStore
		}
		b.Module = module
		out = append(out, fileEntry{Backup: b, file: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	return out, nil
}

func parseBackupName(name string) (Backup, bool) {
	parts := strings.SplitN(strings.TrimSuffix(name, backupExt), "-", 3)
	if len(parts) != 3 {
		return Backup{}, false
	}
	seq, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Backup{}, false
	}
	at, err := time.Parse(backupTSLayout, parts[1])
	if err != nil {
		return Backup{}, false
	}
	return Backup{ID: parts[2], Seq: seq, CreatedAt: at}, true
}
